package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"librarydb/internal/config"
	"librarydb/internal/db"
	"librarydb/internal/schema"
	"librarydb/internal/seed"
	"librarydb/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfg       config.Config
	closeLogs = func() {}
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "librarydb",
		Short:        "Manage the library lending database",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			if cfg.LogDir != "" {
				cleanup, err := setupLogger(cfg.LogDir)
				if err != nil {
					log.Printf("logger setup failed: %v", err)
				} else {
					closeLogs = cleanup
				}
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeLogs()
		},
	}
	root.AddCommand(
		initCmd(),
		seedCmd(),
		tablesCmd(),
		bookDetailsCmd(),
		activeLoansCmd(),
		checkoutCmd(),
		returnCmd(),
		sweepCmd(),
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDB() (*sqlx.DB, error) {
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}

func initCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the tables, indexes and views",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()
			if reset {
				if err := schema.Drop(database); err != nil {
					return err
				}
				log.Printf("dropped existing schema")
			}
			if err := schema.Apply(database); err != nil {
				return err
			}
			log.Printf("schema ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop all tables and views before creating them")
	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter data set",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()
			if err := schema.Apply(database); err != nil {
				return err
			}
			if err := seed.Load(database); err != nil {
				return err
			}
			log.Printf("seed data loaded")
			return nil
		},
	}
}

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()
			names, err := schema.Tables(database)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func bookDetailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "book-details",
		Short: "Show every book with its category and authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()
			rows, err := services.BookDetails(database)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No books with linked authors.")
				return nil
			}
			fmt.Printf("%-34s %-16s %-18s %-34s %s\n", "Title", "ISBN", "Category", "Authors", "Copies")
			fmt.Println(strings.Repeat("-", 112))
			for _, row := range rows {
				fmt.Printf("%-34s %-16s %-18s %-34s %d/%d\n",
					row.Title, row.ISBN, row.Category, row.Authors, row.AvailableCopies, row.TotalCopies)
			}
			return nil
		},
	}
}

func activeLoansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active-loans",
		Short: "Show open loans with how overdue each one is",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()
			rows, err := services.ActiveLoans(database)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No active loans.")
				return nil
			}
			fmt.Printf("%-24s %-30s %-34s %-12s %-12s %s\n", "Member", "Email", "Book", "Loaned", "Due", "Days Overdue")
			fmt.Println(strings.Repeat("-", 128))
			for _, row := range rows {
				fmt.Printf("%-24s %-30s %-34s %-12s %-12s %d\n",
					row.MemberName, row.MemberEmail, row.BookTitle,
					row.LoanDate.Format("2006-01-02"), row.DueDate.Format("2006-01-02"), row.DaysOverdue)
			}
			return nil
		},
	}
}

func checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <isbn> <member-email>",
		Short: "Lend a copy of a book to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()
			book, err := services.GetBookByISBN(database, args[0])
			if err != nil {
				return fmt.Errorf("find book: %w", err)
			}
			member, err := services.GetMemberByEmail(database, args[1])
			if err != nil {
				return fmt.Errorf("find member: %w", err)
			}
			loan, err := services.Checkout(database, book.ID, member.ID, cfg.LoanPeriodDays)
			if err != nil {
				return err
			}
			fmt.Printf("loan %s: %q due %s\n", loan.ID, book.Title, loan.DueDate.Format("2006-01-02"))
			return nil
		},
	}
}

func returnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <loan-id>",
		Short: "Close a loan and put the copy back on the shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()
			loan, err := services.Return(database, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("loan %s returned on %s\n", loan.ID, loan.ReturnDate.Format("2006-01-02"))
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark past-due loans Overdue, once or on an interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()
			count, err := services.MarkOverdue(database)
			if err != nil {
				return err
			}
			log.Printf("marked %d loans overdue", count)
			if cfg.SweepIntervalSeconds <= 0 {
				return nil
			}

			ticker := time.NewTicker(time.Duration(cfg.SweepIntervalSeconds) * time.Second)
			defer ticker.Stop()
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
			log.Printf("sweeping every %ds", cfg.SweepIntervalSeconds)
			for {
				select {
				case <-ticker.C:
					count, err := services.MarkOverdue(database)
					if err != nil {
						log.Printf("sweep: %v", err)
						continue
					}
					if count > 0 {
						log.Printf("marked %d loans overdue", count)
					}
				case <-stop:
					log.Printf("sweep stopped")
					return nil
				}
			}
		},
	}
}

func setupLogger(logDir string) (func(), error) {
	retentionDays := 7
	if value := os.Getenv("LOG_RETENTION_DAYS"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil && parsed > 0 {
			if parsed > 7 {
				parsed = 7
			}
			retentionDays = parsed
		}
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	currentDate := time.Now().Format("2006-01-02")
	file, err := openLogFile(logDir, currentDate)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, file))
	cleanupOldLogs(logDir, retentionDays)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				date := time.Now().Format("2006-01-02")
				mu.Lock()
				if date != currentDate {
					newFile, err := openLogFile(logDir, date)
					if err == nil {
						log.SetOutput(io.MultiWriter(os.Stdout, newFile))
						_ = file.Close()
						file = newFile
						currentDate = date
						cleanupOldLogs(logDir, retentionDays)
					}
				}
				mu.Unlock()
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		mu.Lock()
		_ = file.Close()
		mu.Unlock()
	}, nil
}

func openLogFile(logDir, date string) (*os.File, error) {
	filename := filepath.Join(logDir, fmt.Sprintf("librarydb-%s.log", date))
	return os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func cleanupOldLogs(logDir string, retentionDays int) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -(retentionDays - 1))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.HasPrefix(name, "librarydb-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		datePart := strings.TrimSuffix(strings.TrimPrefix(name, "librarydb-"), ".log")
		logDate, err := time.Parse("2006-01-02", datePart)
		if err != nil {
			continue
		}
		if logDate.Before(cutoff) {
			_ = os.Remove(filepath.Join(logDir, name))
		}
	}
}
