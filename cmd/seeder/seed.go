package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ToaaMusic/ai-main/internal/config"
	"github.com/ToaaMusic/ai-main/internal/database"
	"github.com/ToaaMusic/ai-main/internal/logging"
	"github.com/ToaaMusic/ai-main/internal/models"
	"github.com/ToaaMusic/ai-main/internal/pricing"
	"github.com/ToaaMusic/ai-main/internal/search"
)

// seeder carries what every step needs. db is nil on a dry run.
type seeder struct {
	db        *database.DB
	log       *zap.Logger
	out       io.Writer
	estimator *pricing.Estimator
	indexer   *search.Indexer
}

type step func(ctx context.Context, s *seeder) error

func runSteps(cmd *cobra.Command, steps ...step) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	tables, err := pricing.LoadTables(cfg.PricingTablesFile)
	if err != nil {
		return err
	}

	seg, err := search.LoadSegmenter()
	if err != nil {
		log.Warn("segmenter unavailable, using whitespace keywords", zap.Error(err))
	}

	indexer := search.NewIndexer(seg)
	for _, word := range cfg.SearchWords {
		indexer.AddWord(word)
	}

	s := &seeder{
		log:       log,
		out:       cmd.OutOrStdout(),
		estimator: pricing.NewEstimator(tables),
		indexer:   indexer,
	}

	ctx := cmd.Context()
	if !dryRun {
		db, err := database.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			return err
		}
		s.db = db
	}

	for _, run := range steps {
		if err := run(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func seedCategoriesStep(ctx context.Context, s *seeder) error {
	if s.db == nil {
		for _, root := range seedCategories {
			fmt.Fprintf(s.out, "[dry-run] category %s (%d sub-categories)\n", root.name, len(root.children))
		}
		return nil
	}

	existing, err := categoryIDs(ctx, s.db)
	if err != nil {
		return err
	}

	created := 0
	for _, root := range seedCategories {
		rootID, ok := existing[root.name]
		if !ok {
			c, err := s.db.CreateCategory(ctx, &models.CreateCategoryRequest{Name: root.name, Description: &root.description})
			if err != nil {
				return fmt.Errorf("create category %s: %w", root.name, err)
			}
			rootID = c.ID
			created++
		}

		for _, child := range root.children {
			if _, ok := existing[child.name]; ok {
				continue
			}
			parentID := rootID
			if _, err := s.db.CreateCategory(ctx, &models.CreateCategoryRequest{Name: child.name, Description: &child.description, ParentID: &parentID}); err != nil {
				return fmt.Errorf("create category %s: %w", child.name, err)
			}
			created++
		}
	}

	s.log.Info("categories seeded", zap.Int("created", created))
	return nil
}

func categoryIDs(ctx context.Context, db *database.DB) (map[string]int, error) {
	all, err := db.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int, len(all))
	for _, c := range all {
		ids[c.Name] = c.ID
	}
	return ids, nil
}

func seedUsersStep(ctx context.Context, s *seeder) error {
	if s.db == nil {
		for _, u := range seedUsers {
			fmt.Fprintf(s.out, "[dry-run] user %s <%s>\n", u.username, u.email)
		}
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	created := 0
	for _, u := range seedUsers {
		phone := u.phone
		_, err := s.db.CreateUser(ctx, &models.RegisterRequest{Username: u.username, Email: u.email, Phone: &phone}, string(hash))
		if errors.Is(err, database.ErrEmailExists) || errors.Is(err, database.ErrUsernameExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		created++
	}

	s.log.Info("users seeded", zap.Int("created", created))
	return nil
}

// priceSeedProduct runs the estimator for p against its top-level category.
func priceSeedProduct(est *pricing.Estimator, p seedProduct) (*pricing.Result, error) {
	root, ok := rootOf(p.category)
	if !ok {
		return nil, fmt.Errorf("unknown category %q", p.category)
	}
	return est.Estimate(pricing.Request{
		Brand:         p.brand,
		Condition:     p.condition,
		OriginalPrice: p.originalPrice,
		UsageDuration: p.usageMonths,
		Category:      root,
	})
}

func seedProductsStep(ctx context.Context, s *seeder) error {
	if s.db == nil {
		for _, p := range seedProducts {
			res, err := priceSeedProduct(s.estimator, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "[dry-run] product %s: listed ¥%.2f, estimated ¥%.2f\n", p.title, p.userPrice, res.EstimatedPrice)
		}
		return nil
	}

	categories, err := categoryIDs(ctx, s.db)
	if err != nil {
		return err
	}

	created := 0
	for _, p := range seedProducts {
		categoryID, ok := categories[p.category]
		if !ok {
			return fmt.Errorf("category %s missing, run the categories command first", p.category)
		}
		seller, err := s.db.GetUserByEmail(ctx, p.seller)
		if err != nil {
			return fmt.Errorf("seller %s: %w (run the users command first)", p.seller, err)
		}

		res, err := priceSeedProduct(s.estimator, p)
		if err != nil {
			return err
		}

		req := models.CreateProductRequest{
			Title:         p.title,
			Description:   optional(p.description),
			Brand:         optional(p.brand),
			Model:         optional(p.model),
			Condition:     p.condition,
			OriginalPrice: &p.originalPrice,
			UserPrice:     p.userPrice,
			UsageDuration: &p.usageMonths,
			CategoryID:    categoryID,
		}
		est := database.EstimateFrom(res)

		keywords := s.indexer.Keywords(p.title, p.brand, p.model)
		if _, err := s.db.CreateProduct(ctx, seller.ID, &req, &est, keywords); err != nil {
			return fmt.Errorf("create product %s: %w", p.title, err)
		}
		created++
	}

	s.log.Info("products seeded", zap.Int("created", created))
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
