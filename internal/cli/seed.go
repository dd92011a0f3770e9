package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"movies-battle/internal/app"
	"movies-battle/internal/domain"
)

// NewSeedCmd loads the configured players and movie titles into empty stores.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed users and movies from configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer svc.Close()
			return seed(cmd.Context(), svc)
		},
	}
}

func seed(ctx context.Context, svc *services) error {
	existing, err := svc.users.AllUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if len(existing) == 0 {
		for _, u := range svc.cfg.Seed.Users {
			if err := svc.users.SaveUser(ctx, domain.User{Username: u.Username, Name: u.Name}); err != nil {
				return fmt.Errorf("seed user %s: %w", u.Username, err)
			}
		}
		svc.logger.Info("users seeded", zap.Int("count", len(svc.cfg.Seed.Users)))
	}

	count, err := svc.catalog.Count(ctx)
	if err != nil {
		return fmt.Errorf("count movies: %w", err)
	}
	if count > 0 || svc.cfg.Seed.TitlesFile == "" {
		return nil
	}
	titles, err := readTitles(svc.cfg.Seed.TitlesFile)
	if err != nil {
		return err
	}
	saved := 0
	for _, title := range titles {
		if _, _, err := svc.catalog.Save(ctx, app.MovieRequest{Title: title}); err != nil {
			svc.logger.Warn("skipping title", zap.String("title", title), zap.Error(err))
			continue
		}
		saved++
	}
	svc.logger.Info("movies seeded", zap.Int("count", saved), zap.Int("titles", len(titles)))
	return nil
}

// readTitles returns one title per non-empty line; lines starting with # are skipped.
func readTitles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open titles file: %w", err)
	}
	defer f.Close()
	var titles []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	return titles, sc.Err()
}
