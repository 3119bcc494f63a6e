// Command create-user adds a user with a bcrypt-hashed password, an empty
// profile and default preferences. Missing flags are prompted for on stdin.
// Usage: go run ./cmd/create-user [-username u] [-email e] [-language de]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type newUser struct {
	Username string
	Email    string
	Password string
	Language string
	Theme    string
}

func main() {
	var u newUser
	flag.StringVar(&u.Username, "username", "", "login name")
	flag.StringVar(&u.Email, "email", "", "email address")
	flag.StringVar(&u.Language, "language", "en", "preferred display language")
	flag.StringVar(&u.Theme, "theme", "system", "light, dark or system")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "no .env loaded: %v\n", err)
	}

	reader := bufio.NewReader(os.Stdin)
	u.Username = promptIfEmpty(reader, "Username", u.Username)
	u.Email = promptIfEmpty(reader, "Email", u.Email)
	u.Password = promptIfEmpty(reader, "Password", "")
	if err := u.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	userID, token, err := createUser(ctx, conn, u)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", u.Username)
	fmt.Printf("  Auth Token: %s\n", token)
}

func promptIfEmpty(r *bufio.Reader, label, current string) string {
	if current != "" {
		return current
	}
	fmt.Printf("%s: ", label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

func (u newUser) validate() error {
	switch {
	case u.Username == "":
		return fmt.Errorf("username is required")
	case !strings.Contains(u.Email, "@"):
		return fmt.Errorf("email %q is not valid", u.Email)
	case len(u.Password) < 8:
		return fmt.Errorf("password must be at least 8 characters")
	}
	switch u.Theme {
	case "light", "dark", "system":
	default:
		return fmt.Errorf("theme must be light, dark or system")
	}
	return nil
}

// createUser inserts the user, its profile row and its preferences together.
func createUser(ctx context.Context, conn *pgx.Conn, u newUser) (int, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", fmt.Errorf("hash password: %w", err)
	}
	token := uuid.New().String()

	var userID int
	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (username, email, password, auth_token)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			u.Username, u.Email, string(hash), token,
		).Scan(&userID)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1)`, userID); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_preferences (user_id, language, theme) VALUES ($1, $2, $3)`,
			userID, u.Language, u.Theme); err != nil {
			return fmt.Errorf("insert preferences: %w", err)
		}
		return nil
	})
	return userID, token, err
}
