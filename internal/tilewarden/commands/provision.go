package commands

import (
	"context"
	"errors"

	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
)

// Provision runs the whole pipeline in order: image fetch, asset fetch,
// extraction, publish. Every stage is idempotent, so rerunning a partially
// failed provision is safe and only redoes the missing work. A stage
// failure is logged and the remaining stages still run (a tile image that
// failed to download must not block asset downloads); the combined error
// drives the process exit code.
func Provision(ctx context.Context, cfg config.Config, deps Deps) error {
	var errs []error

	if err := FetchImage(ctx, cfg, deps, cfg.Area, cfg.Version); err != nil {
		log.Error().Err(err).Str("area", cfg.Area).Msg("Image fetch failed")
		errs = append(errs, err)
	}

	if err := FetchAssets(ctx, cfg, deps); err != nil {
		log.Error().Err(err).Msg("Asset fetch failed")
		errs = append(errs, err)
	}

	if err := ExtractAll(ctx, cfg, deps); err != nil {
		log.Error().Err(err).Msg("Extraction failed")
		errs = append(errs, err)
	}

	if _, err := Publish(cfg); err != nil {
		log.Error().Err(err).Msg("Publish failed")
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
