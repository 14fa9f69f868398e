package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"meal-planner/internal/api"
	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/grocery"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/metrics"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config.LoadDotEnv()
	ctx := context.Background()

	// grocery is a pure transformation and needs no configuration.
	if os.Args[1] == "grocery" {
		if err := runGrocery(os.Args[2:], os.Stdin, os.Stdout); err != nil {
			log.Fatalf("Grocery list failed: %v", err)
		}
		return
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch os.Args[1] {
	case "migrate":
		if err := database.RunMigrations(cfg.DatabasePath); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	case "token":
		tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
		user := tokenCmd.String("user", "", "User id to issue the token for")
		ttl := tokenCmd.Duration("ttl", 30*24*time.Hour, "Token lifetime")
		tokenCmd.Parse(os.Args[2:])

		token, err := api.GenerateToken(cfg.JWTSecret, *user, *ttl)
		if err != nil {
			log.Fatalf("Failed to generate token: %v", err)
		}
		fmt.Println(token)
	case "plan", "list":
		runPlanCommand(ctx, cfg, os.Args[1], os.Args[2:])
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		db, err := database.NewDB(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		affected, err := metrics.NewStore(db.SQL).Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runPlanCommand(ctx context.Context, cfg *config.Config, name string, args []string) {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	user := cmd.String("user", "cli", "User id owning the plan")
	request := cmd.String("request", "", "What to plan for (plan only)")
	week := cmd.String("week", "", "Week start as YYYY-MM-DD, defaults to next Monday (plan only)")
	cmd.Parse(args)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	application, _, release, err := app.Wire(ctx, cfg, db.SQL)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer release()

	var view *app.PlanView
	if name == "plan" {
		var weekStart time.Time
		if *week != "" {
			if weekStart, err = time.Parse(time.DateOnly, *week); err != nil {
				log.Fatalf("Invalid -week %q: %v", *week, err)
			}
		}
		view, err = application.GeneratePlan(ctx, *user, *request, weekStart)
	} else {
		view, err = application.CurrentPlan(ctx, *user)
	}
	if err != nil {
		log.Fatalf("Command %s failed: %v", name, err)
	}

	if err := writeJSON(os.Stdout, view); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}

// runGrocery reads a JSON array of meals and prints the aggregated list.
func runGrocery(args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := flag.NewFlagSet("grocery", flag.ContinueOnError)
	in := cmd.String("in", "-", "Meals JSON file, - for stdin")
	beverages := cmd.Bool("beverages", false, "Include cocktail ingredients")
	flat := cmd.Bool("flat", false, "Print the flat list instead of the categorized one")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	var data []byte
	var err error
	if *in == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(*in)
	}
	if err != nil {
		return fmt.Errorf("failed to read meals: %w", err)
	}

	if !mealplan.IsJSONArray(data) {
		return fmt.Errorf("meals must be an array")
	}
	var meals []mealplan.Meal
	if err := json.Unmarshal(data, &meals); err != nil {
		return fmt.Errorf("failed to parse meals: %w", err)
	}

	list := grocery.Build(meals, grocery.Options{IncludeBeverages: *beverages})
	if *flat {
		return writeJSON(stdout, list)
	}
	return writeJSON(stdout, list.Categorized())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  grocery            Aggregate a JSON array of meals into a grocery list")
	fmt.Println("  plan               Generate a weekly plan and its grocery list")
	fmt.Println("  list               Show the current plan and grocery list")
	fmt.Println("  migrate            Apply database migrations")
	fmt.Println("  token              Issue an API token for a user")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
