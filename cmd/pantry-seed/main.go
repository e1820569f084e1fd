// Command pantry-seed loads development data into a Pantry database and
// manages the embedding index from the command line.
//
// Usage:
//
//	pantry-seed items        seed the catalog with sample items
//	pantry-seed employees    seed the employees table
//	pantry-seed shifts       seed shifts for existing employees
//	pantry-seed vectorize    rebuild every embedding from current items
//	pantry-seed clear        delete all items and embeddings
//	pantry-seed status       print the embedding sync status
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/pantry/internal/catalog"
	"github.com/MikeSquared-Agency/pantry/internal/config"
	"github.com/MikeSquared-Agency/pantry/internal/embeddings"
	"github.com/MikeSquared-Agency/pantry/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: pantry-seed <items|employees|shifts|vectorize|clear|status>")
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	catalogStore := store.NewCatalog(db)

	var embedder embeddings.Provider
	if cfg.EmbeddingBackend == "openai" && cfg.OpenAIAPIKey != "" {
		embedder = embeddings.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIEmbedModel)
	} else {
		embedder = embeddings.NewSimpleProvider()
	}

	manager := catalog.NewManager(catalogStore, embedder, nil, logger)

	switch os.Args[1] {
	case "items":
		err = seedItems(ctx, manager)
	case "employees":
		err = seedEmployees(ctx, db)
	case "shifts":
		err = seedShifts(ctx, db)
	case "vectorize":
		err = vectorize(ctx, manager)
	case "clear":
		err = clear(ctx, db)
	case "status":
		err = status(ctx, manager)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// seedItems inserts the sample catalog through the manager so each item gets an
// embedding at insert time.
func seedItems(ctx context.Context, manager *catalog.Manager) error {
	items := []store.ItemCreateInput{
		{Name: "Espresso", Price: 350, Description: "Double shot of our house blend, rich crema."},
		{Name: "Cappuccino", Price: 475, Description: "Espresso with steamed milk and a thick layer of foam."},
		{Name: "Cold Brew", Price: 525, Description: "Slow-steeped for 18 hours, smooth and low acid."},
		{Name: "Matcha Latte", Price: 550, Description: "Ceremonial grade matcha whisked with steamed oat milk."},
		{Name: "Fresh Orange Juice", Price: 600, Description: "Squeezed to order from Valencia oranges."},
		{Name: "Butter Croissant", Price: 425, Description: "Laminated overnight, baked every morning."},
		{Name: "Almond Croissant", Price: 495, Description: "Twice-baked croissant filled with almond frangipane."},
		{Name: "Sourdough Toast", Price: 650, Description: "Thick-cut sourdough with cultured butter and sea salt."},
		{Name: "Avocado Toast", Price: 1150, Description: "Smashed avocado, chili flakes, and lime on sourdough."},
		{Name: "Breakfast Burrito", Price: 1250, Description: "Scrambled eggs, black beans, cheddar, and salsa verde."},
		{Name: "Chicken Caesar Salad", Price: 1450, Description: "Grilled chicken, romaine, parmesan, house dressing."},
		{Name: "Tomato Soup", Price: 850, Description: "Roasted tomato and basil soup with grilled cheese croutons."},
		{Name: "Lemons", Price: 99, Description: "Fresh lemons."},
		{Name: "Sparkling Water", Price: 300, Description: "House-carbonated, served with a lemon twist."},
		{Name: "Chocolate Chip Cookie", Price: 375, Description: "Brown butter dough with dark chocolate chunks."},
	}

	for _, input := range items {
		it, err := manager.Create(ctx, input)
		if err != nil {
			return fmt.Errorf("seeding %q: %w", input.Name, err)
		}
		fmt.Printf("created %s (%s)\n", it.Name, it.ID)
	}
	fmt.Printf("seeded %d items\n", len(items))
	return nil
}

type employeeSeed struct {
	code       string
	first      string
	last       string
	role       string
	department string
	rate       float64
	empType    string
	shift      string
}

// seedEmployees inserts sample staff directly; Pantry only ever reads these
// tables, so there is no store API for them.
func seedEmployees(ctx context.Context, db *store.DB) error {
	seeds := []employeeSeed{
		{"EMP001", "Maria", "Santos", "manager", "front_of_house", 28.50, "full_time", "morning"},
		{"EMP002", "James", "Okafor", "barista", "front_of_house", 18.00, "full_time", "morning"},
		{"EMP003", "Priya", "Nair", "barista", "front_of_house", 17.50, "part_time", "afternoon"},
		{"EMP004", "Tom", "Lindqvist", "chef", "kitchen", 26.00, "full_time", "morning"},
		{"EMP005", "Aisha", "Diallo", "line_cook", "kitchen", 20.00, "full_time", "afternoon"},
		{"EMP006", "Leo", "Martinez", "server", "front_of_house", 16.50, "part_time", "evening"},
		{"EMP007", "Hana", "Kobayashi", "baker", "kitchen", 22.00, "full_time", "morning"},
		{"EMP008", "Derek", "Boateng", "dishwasher", "kitchen", 15.50, "part_time", "evening"},
	}

	for _, e := range seeds {
		email := fmt.Sprintf("%s.%s@pantry.example", e.first, e.last)
		hireDate := time.Now().AddDate(0, -rand.Intn(36), 0)

		_, err := db.Pool.Exec(ctx, `
			INSERT INTO employees (id, employee_code, first_name, last_name, email, role,
				department, hourly_rate, overtime_rate, employment_type, hire_date, preferred_shift)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (employee_code) DO NOTHING`,
			uuid.NewString(), e.code, e.first, e.last, email, e.role,
			e.department, e.rate, e.rate*1.5, e.empType, hireDate, e.shift)
		if err != nil {
			return fmt.Errorf("seeding employee %s: %w", e.code, err)
		}
	}
	fmt.Printf("seeded %d employees\n", len(seeds))
	return nil
}

// seedShifts generates two weeks of shifts for every employee, one per day
// minus a couple of random days off.
func seedShifts(ctx context.Context, db *store.DB) error {
	rows, err := db.Pool.Query(ctx, "SELECT id, role, hourly_rate, preferred_shift FROM employees")
	if err != nil {
		return fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	type emp struct {
		id    string
		role  string
		rate  float64
		shift string
	}
	var emps []emp
	for rows.Next() {
		var e emp
		var shift *string
		if err := rows.Scan(&e.id, &e.role, &e.rate, &shift); err != nil {
			return fmt.Errorf("scanning employee: %w", err)
		}
		if shift != nil {
			e.shift = *shift
		}
		emps = append(emps, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(emps) == 0 {
		return fmt.Errorf("no employees found; run 'pantry-seed employees' first")
	}

	startHour := map[string]int{"morning": 6, "afternoon": 12, "evening": 16}

	count := 0
	for _, e := range emps {
		for day := 0; day < 14; day++ {
			if rand.Intn(7) == 0 {
				continue // day off
			}

			date := time.Now().AddDate(0, 0, -day).Truncate(24 * time.Hour)
			h := startHour[e.shift]
			if h == 0 {
				h = 8
			}
			start := date.Add(time.Duration(h) * time.Hour)
			hours := 8.0
			end := start.Add(8 * time.Hour)

			status := "completed"
			if day == 0 {
				status = "scheduled"
			}

			_, err := db.Pool.Exec(ctx, `
				INSERT INTO shifts (id, employee_id, shift_date, scheduled_start_time,
					scheduled_end_time, status, role, scheduled_hours, hourly_rate, total_pay)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				uuid.NewString(), e.id, date, start, end, status, e.role, hours, e.rate, hours*e.rate)
			if err != nil {
				return fmt.Errorf("seeding shift: %w", err)
			}
			count++
		}
	}
	fmt.Printf("seeded %d shifts\n", count)
	return nil
}

func vectorize(ctx context.Context, manager *catalog.Manager) error {
	report, err := manager.ResyncAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("vectorized: processed=%d failed=%d\n", report.Processed, report.Failed)
	return nil
}

func clear(ctx context.Context, db *store.DB) error {
	// Embeddings go with the items via the FK cascade.
	tag, err := db.Pool.Exec(ctx, "DELETE FROM items")
	if err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}
	fmt.Printf("deleted %d items\n", tag.RowsAffected())
	return nil
}

func status(ctx context.Context, manager *catalog.Manager) error {
	s, err := manager.CheckSync(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("items=%d embeddings=%d fully_synced=%v\n", s.ItemCount, s.EmbeddingCount, s.FullySynced)
	return nil
}
