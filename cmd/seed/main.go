package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/oksasatya/cipher/config"
	"github.com/oksasatya/cipher/internal/application"
	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/internal/domain/repository"
	"github.com/oksasatya/cipher/internal/infrastructure/database"
	"github.com/oksasatya/cipher/internal/infrastructure/migrations"
	"github.com/oksasatya/cipher/pkg/helpers"
)

// Seeds staff roles from SEED_STAFF_ROLE_IDS (comma-separated) and, when
// SEED_DEMO_USER_ID is set, a demo identity with one profile version.
// SEED_RESET=true drops the schema first.
func main() {
	_ = config.LoadDotenv()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	if reset, _ := strconv.ParseBool(os.Getenv("SEED_RESET")); reset {
		if err := cfg.ValidateDatabase(); err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}
		if err := migrations.Down(cfg.DatabaseDialect, cfg.DatabaseURL); err != nil {
			log.Fatalf("failed to reset schema: %v", err)
		}
		cfg.MigrationsEnabled = true
		logger.Info("schema reset")
	}

	provider, err := database.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = provider.Close() }()

	staff := application.NewStaffService(provider)
	for _, raw := range strings.Split(os.Getenv("SEED_STAFF_ROLE_IDS"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			log.Fatalf("invalid role id %q: %v", raw, err)
		}
		if err := staff.Grant(ctx, id); err != nil {
			log.Fatalf("failed to seed staff role: %v", err)
		}
	}
	roles, err := staff.Roles(ctx)
	if err != nil {
		log.Fatalf("failed to list staff roles: %v", err)
	}
	fmt.Printf("staff roles: %v\n", roles)

	if raw := os.Getenv("SEED_DEMO_USER_ID"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			log.Fatalf("invalid demo user id %q: %v", raw, err)
		}
		profileID, err := seedDemo(ctx, provider, id)
		if err != nil {
			log.Fatalf("failed to seed demo user: %v", err)
		}
		fmt.Printf("seeded demo user: discord_user_id=%d profile_id=%d\n", id, profileID)
	}
}

func seedDemo(ctx context.Context, provider repository.Provider, discordUserID uint64) (int64, error) {
	repo, err := provider.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer repo.Release()

	var profileID int64
	err = repo.WithinTransaction(ctx, func(tx repository.Repository) error {
		identity, err := tx.IdentityByDiscordID(ctx, discordUserID)
		if err != nil {
			return err
		}
		if identity == nil {
			identity, err = tx.InsertIdentity(ctx, entity.NewIdentity{
				DiscordUserID: discordUserID,
				PokemonGoCode: entity.String("0000 0000 0000"),
			})
			if err != nil {
				return err
			}
		}
		p, err := tx.InsertProfile(ctx, entity.NewProfile{
			UserID: identity.ID,
			ProfileFields: entity.ProfileFields{
				TrainerClass:   entity.String("Ace Trainer"),
				PartnerPokemon: entity.String("Pikachu"),
				StartingRegion: entity.String("Kanto"),
			},
		})
		if err != nil {
			return err
		}
		profileID = p.ID
		return nil
	})
	return profileID, err
}
