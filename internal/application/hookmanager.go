package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/ericfisherdev/clagate/internal/domain/model"
	"github.com/ericfisherdev/clagate/internal/domain/port/driven"
)

// maskedConfigKeys are hook config keys GitHub never echoes back verbatim.
var maskedConfigKeys = []string{"secret"}

// defaultedConfigKeys are filled in by GitHub when a hook is created without
// them, and are always present in listings.
var defaultedConfigKeys = map[string]string{"insecure_ssl": "0"}

// HookStateError reports that GitHub refused a hook as a duplicate but no
// existing hook matches it. The gate does not create a second one.
type HookStateError struct {
	Repository model.Repository
	Name       string
	Candidates int
}

func (e *HookStateError) Error() string {
	return fmt.Sprintf("hook %q reported as existing on %s but none of %d hooks match",
		e.Name, e.Repository.FullName(), e.Candidates)
}

// HookManager keeps webhook registrations idempotent.
type HookManager struct {
	logger *slog.Logger
}

// NewHookManager creates a HookManager.
func NewHookManager(logger *slog.Logger) *HookManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &HookManager{logger: logger}
}

// EnsureHook creates the hook, or returns the id of the identical hook that
// already exists. Errors other than the duplicate conflict are returned as-is.
func (m *HookManager) EnsureHook(
	ctx context.Context,
	platform driven.PlatformClient,
	repo model.Repository,
	hook model.Hook,
) (int64, error) {
	created, err := platform.CreateHook(ctx, repo, hook)
	if err == nil {
		m.logger.Info("hook created", "repo", repo.FullName(), "hook_id", created.ID)
		return created.ID, nil
	}
	if !driven.HasCode(err, driven.CodeHookExists) {
		return 0, err
	}

	existing, err := platform.ListHooks(ctx, repo)
	if err != nil {
		return 0, err
	}

	want, err := normaliseConfig(hook.Config)
	if err != nil {
		return 0, err
	}

	for _, h := range existing {
		if h.Name != hook.Name {
			continue
		}
		got, err := normaliseConfig(h.Config)
		if err != nil {
			return 0, err
		}
		if reflect.DeepEqual(want, got) {
			m.logger.Info("hook already registered", "repo", repo.FullName(), "hook_id", h.ID)
			return h.ID, nil
		}
	}

	return 0, &HookStateError{Repository: repo, Name: hook.Name, Candidates: len(existing)}
}

// EditHook updates a hook in place.
func (m *HookManager) EditHook(
	ctx context.Context,
	platform driven.PlatformClient,
	repo model.Repository,
	id int64,
	hook model.Hook,
) (model.Hook, error) {
	return platform.EditHook(ctx, repo, id, hook)
}

// DeleteHook removes a hook. A hook that is already gone counts as deleted.
func (m *HookManager) DeleteHook(ctx context.Context, platform driven.PlatformClient, repo model.Repository, id int64) error {
	err := platform.DeleteHook(ctx, repo, id)
	if driven.HasCode(err, driven.CodeNotFound) {
		m.logger.Info("hook already deleted", "repo", repo.FullName(), "hook_id", id)
		return nil
	}
	return err
}

// normaliseConfig round-trips a config through JSON so that values compare
// structurally regardless of their Go types (int vs float64, []string vs []any).
// Masked keys are dropped and GitHub's defaults filled in.
func normaliseConfig(config map[string]any) (map[string]any, error) {
	trimmed := make(map[string]any, len(config)+len(defaultedConfigKeys))
	for k, v := range config {
		trimmed[k] = v
	}
	for _, k := range maskedConfigKeys {
		delete(trimmed, k)
	}
	for k, def := range defaultedConfigKeys {
		v, ok := trimmed[k]
		if !ok || v == nil {
			trimmed[k] = def
			continue
		}
		// GitHub accepts insecure_ssl as a number or a string and lists it as a string.
		trimmed[k] = fmt.Sprint(v)
	}

	raw, err := json.Marshal(trimmed)
	if err != nil {
		return nil, fmt.Errorf("encode hook config: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode hook config: %w", err)
	}
	return out, nil
}

// IsHookStateError reports whether err is a *HookStateError.
func IsHookStateError(err error) bool {
	var hse *HookStateError
	return errors.As(err, &hse)
}
