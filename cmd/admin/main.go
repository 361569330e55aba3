package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"sentra/backend/internal/auth"
	"sentra/backend/internal/config"
	"sentra/backend/internal/models"
	"sentra/backend/internal/storage"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [flags]

Commands:
  create-user   create an account (bootstrap admins and staff)
  list-staff    print the staff directory
  stats         print incident counters`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Read()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// No redis needed for admin CLI.
	s := storage.NewStorageService(db, nil, cfg.Redis.EventsChannel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "create-user":
		err = createUser(ctx, s, cfg.Auth.BcryptCost, args)
	case "list-staff":
		err = listStaff(ctx, s)
	case "stats":
		err = printStats(ctx, s)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

func createUser(ctx context.Context, s *storage.Service, cost int, args []string) error {
	var in auth.RegisterInput
	var role string

	fs := pflag.NewFlagSet("create-user", pflag.ContinueOnError)
	fs.StringVar(&in.Name, "name", "", "display name")
	fs.StringVar(&in.Email, "email", "", "login email")
	fs.StringVar(&in.Password, "password", "", "initial password")
	fs.StringVar(&role, "role", string(models.RoleStaff), "student, staff or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	in.Role = models.Role(role)

	if err := storage.Migrate(s.DB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	user, err := auth.NewService(s, nil, cost, zap.NewNop()).Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("User %s (%s) created with role %s.\n", user.Email, user.ID, user.Role)
	return nil
}

func listStaff(ctx context.Context, s *storage.Service) error {
	staff, err := s.ListStaff(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL")
	for _, m := range staff {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Name, m.Email)
	}
	return w.Flush()
}

func printStats(ctx context.Context, s *storage.Service) error {
	st, err := s.IncidentStats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Total: %d (unassigned: %d)\n", st.Total, st.Unassigned)
	for _, status := range models.Statuses {
		fmt.Printf("  %-10s %d\n", status, st.ByStatus[status])
	}
	priorities := append([]models.Priority(nil), models.Priorities...)
	sort.Slice(priorities, func(i, j int) bool { return priorities[i].Rank() > priorities[j].Rank() })
	for _, p := range priorities {
		fmt.Printf("  %-10s %d\n", p, st.ByPriority[p])
	}
	return nil
}
