// Command fitlog is a small terminal client for logging meals and checking off
// habits against a running API.
// Usage: fitlog <meals|add-meal|rm-meal|check|uncheck|dashboard> [args]
// Reads FITJOURNEY_URL and FITJOURNEY_TOKEN from the environment or .env.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"fitjourney/go-api/client"

	"github.com/joho/godotenv"
)

const usage = `usage: fitlog <command> [args]

commands:
  meals [date]                      list a day's meals
  add-meal -type T -name N -kcal K  log a meal (optional -date, -protein, -carbs, -fat)
  rm-meal <id>                      delete a meal
  check <habit-id> [value]          log a habit for today (value defaults to the target)
  uncheck <habit-id>                remove today's log for a habit
  dashboard [date]                  print the day's summary
`

func main() {
	_ = godotenv.Load()

	baseURL := os.Getenv("FITJOURNEY_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	token := os.Getenv("FITJOURNEY_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "FITJOURNEY_TOKEN is not set")
		os.Exit(1)
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	c := client.New(baseURL, token)
	if lang := os.Getenv("FITJOURNEY_LANG"); lang != "" {
		c.SetLanguage(lang)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, c, os.Stdout, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "fitlog: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("bad arguments, run fitlog without arguments for help")

func run(ctx context.Context, c *client.Client, out io.Writer, cmd string, args []string) error {
	switch cmd {
	case "meals":
		return listMeals(ctx, c, out, optionalArg(args))
	case "add-meal":
		return addMeal(ctx, c, out, args)
	case "rm-meal":
		id, err := intArg(args)
		if err != nil {
			return err
		}
		if err := c.DeleteMeal(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted meal %d\n", id)
		return nil
	case "check":
		return checkHabit(ctx, c, out, args)
	case "uncheck":
		id, err := intArg(args)
		if err != nil {
			return err
		}
		board, err := c.OpenHabitBoard(ctx, "")
		if err != nil {
			return err
		}
		if err := board.Uncheck(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "unchecked habit %d\n", id)
		return nil
	case "dashboard":
		return printDashboard(ctx, c, out, optionalArg(args))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errUsage
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("id %q is not a number", args[0])
	}
	return id, nil
}

func listMeals(ctx context.Context, c *client.Client, out io.Writer, date string) error {
	book, err := c.OpenMealBook(ctx, date)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tTYPE\tNAME\tKCAL\n")
	for _, m := range book.Meals() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", m.ID, m.MealType, m.Name, m.Calories)
	}
	fmt.Fprintf(tw, "\t\ttotal %s\t%d\n", book.Date(), book.Calories())
	return tw.Flush()
}

func addMeal(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("add-meal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var in client.MealInput
	var protein, carbs, fat float64
	fs.StringVar(&in.Date, "date", "", "YYYY-MM-DD, defaults to today")
	fs.StringVar(&in.MealType, "type", "snack", "breakfast, lunch, dinner or snack")
	fs.StringVar(&in.Name, "name", "", "what was eaten")
	fs.IntVar(&in.Calories, "kcal", 0, "calories")
	fs.Float64Var(&protein, "protein", -1, "protein grams")
	fs.Float64Var(&carbs, "carbs", -1, "carb grams")
	fs.Float64Var(&fat, "fat", -1, "fat grams")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if in.Name == "" {
		return errUsage
	}
	in.ProteinG, in.CarbsG, in.FatG = grams(protein), grams(carbs), grams(fat)

	book, err := c.OpenMealBook(ctx, in.Date)
	if err != nil {
		return err
	}
	m, err := book.Add(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "logged %s (%d kcal) as meal %d; %s total %d kcal\n", m.Name, m.Calories, m.ID, book.Date(), book.Calories())
	return nil
}

// grams maps the -1 "unset" flag value to nil.
func grams(v float64) *float64 {
	if v < 0 {
		return nil
	}
	return &v
}

func checkHabit(ctx context.Context, c *client.Client, out io.Writer, args []string) error {
	id, err := intArg(args)
	if err != nil {
		return err
	}
	board, err := c.OpenHabitBoard(ctx, "")
	if err != nil {
		return err
	}

	var value float64
	for _, hb := range board.Habits() {
		if hb.ID == id {
			value = hb.TargetValue
		}
	}
	if len(args) > 1 {
		if value, err = strconv.ParseFloat(args[1], 64); err != nil {
			return fmt.Errorf("value %q is not a number", args[1])
		}
	}

	l, err := board.Check(ctx, id, value)
	if errors.Is(err, client.ErrNotInList) {
		return fmt.Errorf("no active habit %d", id)
	}
	if err != nil {
		return err
	}
	state := "in progress"
	if l.Completed {
		state = "done"
	}
	fmt.Fprintf(out, "habit %d on %s: %g (%s)\n", id, l.Date, l.Value, state)
	return nil
}

func printDashboard(ctx context.Context, c *client.Client, out io.Writer, date string) error {
	d, err := c.Dashboard(ctx, date)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "date\t%s\n", d.Date)
	for _, key := range []string{"calories_consumed", "calories_burned", "net_calories", "target", "remaining", "workout_duration", "weight", "bmi", "habits_done"} {
		if v := d.Display[key]; v != "" {
			fmt.Fprintf(tw, "%s\t%s\n", key, v)
		}
	}
	for _, hb := range d.Habits {
		mark := " "
		if hb.Stats.DoneToday {
			mark = "x"
		}
		fmt.Fprintf(tw, "[%s] %s\tstreak %d, best %d, 7d %.0f%%\n", mark, hb.Name, hb.Stats.CurrentStreak, hb.Stats.LongestStreak, hb.Stats.CompletionRate)
	}
	return tw.Flush()
}
