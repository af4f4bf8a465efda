package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"codeberg.org/biolink/client/internal/identity"
	"github.com/joho/godotenv"
)

// signs a test account into a running identity stub and prints its bearer token
func main() {
	// load environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	endpoint := os.Getenv("BIOLINK_API_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	email := flag.String("email", "test@biolink.dev", "account email")
	password := flag.String("password", "test-password", "account password")
	flag.StringVar(&endpoint, "endpoint", endpoint, "identity endpoint base URL")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := identity.NewClient(endpoint, 10*time.Second)

	result, err := client.SignIn(ctx, identity.SignInRequest{
		Email:       *email,
		Password:    *password,
		DisplayName: "Test User",
	})
	if err != nil {
		log.Fatalf("Failed to sign in: %v", err)
	}

	fmt.Printf("✅ Signed in as %s (ID: %s)\n", result.User.Email, result.User.ID)
	fmt.Printf("\n🔑 Test JWT Token:\n%s\n\n", result.Token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", result.Token)
}
