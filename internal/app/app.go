package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"meal-planner/internal/apiclient"
	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/folders"
	"meal-planner/internal/history"
	"meal-planner/internal/llm"
	"meal-planner/internal/logging"
	"meal-planner/internal/macros"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/preferences"
	"meal-planner/internal/server"
	"meal-planner/internal/storage"
)

// App holds the application's dependencies.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	client        *apiclient.Client
	normalizer    *mealplan.Normalizer
	db            *database.DB
	remoteHistory *history.RemoteStore
	localHistory  *history.SQLiteStore
	metricsStore  *metrics.Store
	mealPlanner   *planner.Planner
	preferences   *preferences.Service
	folders       *folders.Saver
	plans         *storage.PlanStore

	closers []llm.Closer
}

// New wires every component from cfg. The caller must Close the App.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)

	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	plans, err := storage.NewPlanStore(cfg.PlanExportDir)
	if err != nil {
		db.Close()
		return nil, err
	}

	client := apiclient.New(cfg.APIBaseURL, cfg.APIToken, cfg.HTTPTimeout, logger)
	normalizer := mealplan.NewNormalizer()

	a := &App{
		cfg:           cfg,
		logger:        logger,
		client:        client,
		normalizer:    normalizer,
		db:            db,
		remoteHistory: history.NewRemoteStore(client, normalizer, logger),
		localHistory:  history.NewSQLiteStore(db.SQL),
		metricsStore:  metrics.NewStore(db.SQL),
		preferences:   preferences.NewService(client, logger),
		folders:       folders.NewSaver(client, logger),
		plans:         plans,
	}

	gen, err := a.generator(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	mirror := history.NewMirror(a.remoteHistory, a.localHistory, logger)
	a.mealPlanner = planner.NewPlanner(client, gen, mirror, a.metricsStore, logger)

	logger.Debug("application initialized",
		zap.String("provider", cfg.Provider),
		zap.String("api", client.BaseURL()),
		zap.String("database", cfg.DatabasePath),
	)
	return a, nil
}

func (a *App) generator(ctx context.Context) (planner.Generator, error) {
	if a.cfg.Provider == config.ProviderBackend {
		return planner.NewBackendGenerator(a.client), nil
	}
	textGen, err := llm.NewFromConfig(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s client: %w", a.cfg.Provider, err)
	}
	if c, ok := textGen.(llm.Closer); ok {
		a.closers = append(a.closers, c)
	}
	return planner.NewLLMGenerator(a.cfg.Provider, textGen), nil
}

// Close releases the LLM clients and the database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func (a *App) Config() *config.Config              { return a.cfg }
func (a *App) Planner() *planner.Planner           { return a.mealPlanner }
func (a *App) Normalizer() *mealplan.Normalizer    { return a.normalizer }
func (a *App) LocalHistory() *history.SQLiteStore  { return a.localHistory }
func (a *App) Metrics() *metrics.Store             { return a.metricsStore }
func (a *App) Preferences() *preferences.Service   { return a.preferences }
func (a *App) Server() *server.Server              { return server.New(a.mealPlanner, a.normalizer, a.logger) }
func (a *App) RemoteHistory() *history.RemoteStore { return a.remoteHistory }
func (a *App) PlanStore() *storage.PlanStore       { return a.plans }
func (a *App) FolderSaver() *folders.Saver         { return a.folders }
func (a *App) Logger() *zap.Logger                 { return a.logger }

// GenerateRequest tunes GenerateMealPlan.
type GenerateRequest struct {
	Notes  string
	Export bool
	Save   bool
	// KeepExports prunes older exports down to this many; zero keeps all.
	KeepExports int
}

// GenerateMealPlan generates a plan and prints it to w. A cancelled
// generation prints a neutral notice and is not an error.
func (a *App) GenerateMealPlan(ctx context.Context, w io.Writer, req GenerateRequest) error {
	opts := planner.Options{SaveToHistory: req.Save, Notes: req.Notes}

	// Direct providers need the user's preferences in the prompt.
	if a.cfg.Provider != config.ProviderBackend {
		prefs, err := a.preferences.Get(ctx)
		if err != nil {
			a.logger.Warn("using default preferences", zap.Error(err))
			prefs = preferences.Defaults()
		}
		opts.Preferences = &prefs
	}

	fmt.Fprintln(w, "Generating meal plan...")
	res, err := a.mealPlanner.Generate(ctx, opts)
	if err != nil {
		var genErr *planner.GenerationError
		if errors.As(err, &genErr) && genErr.PreferencesRequired() {
			return fmt.Errorf("set your preferences first (%s): %w", genErr.RedirectTo, err)
		}
		return fmt.Errorf("failed to generate plan: %w", err)
	}
	if res.Cancelled() {
		fmt.Fprintln(w, "generation cancelled")
		return nil
	}

	PrintPlan(w, res.Plan)

	if req.Export {
		path, err := a.plans.Save(res.Plan)
		if err != nil {
			return fmt.Errorf("failed to export plan: %w", err)
		}
		fmt.Fprintf(w, "\nExported to %s\n", path)

		if req.KeepExports > 0 {
			removed, err := a.plans.Prune(req.KeepExports)
			if err != nil {
				a.logger.Warn("failed to prune exported plans", zap.Error(err))
			} else if removed > 0 {
				a.logger.Info("pruned exported plans", zap.Int("removed", removed))
			}
		}
	}
	return nil
}

// RegenerateMeal replaces one meal of the current plan.
func (a *App) RegenerateMeal(ctx context.Context, w io.Writer, day, mealType string) error {
	if err := a.mealPlanner.RegenerateMeal(ctx, day, mealType); err != nil {
		return err
	}
	fmt.Fprintf(w, "Regenerated %s for %s.\n", strings.ToLower(mealType), day)
	return nil
}

// ListHistory prints the backend history.
func (a *App) ListHistory(ctx context.Context, w io.Writer) error {
	entries, err := a.remoteHistory.List(ctx)
	if err != nil {
		return err
	}
	printEntries(w, entries)
	return nil
}

// ListLocalHistory prints the plans mirrored in the local database.
func (a *App) ListLocalHistory(ctx context.Context, w io.Writer, limit int) error {
	entries, err := a.localHistory.ListRecent(ctx, limit)
	if err != nil {
		return err
	}
	printEntries(w, entries)
	return nil
}

// ShowHistory prints one stored plan. With asJSON it emits the canonical plan.
func (a *App) ShowHistory(ctx context.Context, w io.Writer, id string, local, asJSON bool) error {
	var (
		rec history.Record
		err error
	)
	if local {
		rec, err = a.localHistory.Get(ctx, id)
	} else {
		rec, err = a.remoteHistory.Get(ctx, id)
	}
	if err != nil {
		return err
	}
	if asJSON {
		return WriteJSON(w, rec.Plan)
	}
	PrintPlan(w, rec.Plan)
	return nil
}

// ImportPlan stores a plan parsed from a file in the local history only.
func (a *App) ImportPlan(ctx context.Context, w io.Writer, plan mealplan.MealPlanData) error {
	id, err := a.localHistory.Save(ctx, plan)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Imported %d meals as %s.\n", plan.MealCount(), id)
	return nil
}

// SaveToFolder saves a recipe into the named folder.
func (a *App) SaveToFolder(ctx context.Context, w io.Writer, recipeID, folderName string) error {
	err := a.folders.SaveRecipe(ctx, recipeID, folderName)
	switch {
	case errors.Is(err, folders.ErrAlreadyInFolder):
		fmt.Fprintf(w, "Recipe %s is already in %q.\n", recipeID, folderName)
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(w, "Saved recipe %s to %q.\n", recipeID, folderName)
	return nil
}

// ShowPreferences prints the effective preferences as JSON.
func (a *App) ShowPreferences(ctx context.Context, w io.Writer) error {
	prefs, err := a.preferences.Get(ctx)
	if err != nil {
		return err
	}
	return WriteJSON(w, prefs)
}

// SavePreferences reads preferences JSON from r over the defaults and stores them.
func (a *App) SavePreferences(ctx context.Context, w io.Writer, r io.Reader) error {
	prefs := preferences.Defaults()
	if err := json.NewDecoder(r).Decode(&prefs); err != nil {
		return fmt.Errorf("failed to decode preferences: %w", err)
	}
	if err := a.preferences.Save(ctx, prefs); err != nil {
		return err
	}
	fmt.Fprintln(w, "Preferences saved.")
	return nil
}

// PrintUsage prints the daily generation usage of the last days and the
// state of local storage.
func (a *App) PrintUsage(ctx context.Context, w io.Writer, days int) error {
	usage, err := a.metricsStore.GetDailyUsage(ctx, days)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		fmt.Fprintln(w, "No generations recorded.")
	}
	for _, d := range usage {
		fmt.Fprintf(w, "%s  runs=%d cancelled=%d failed=%d prompt=%d completion=%d\n",
			d.Date, d.TotalExecution, d.Cancelled, d.Failed, d.TotalPrompt, d.TotalCompletion)
	}

	h, err := a.metricsStore.Health(ctx, metrics.StoragePaths{
		DatabasePath: a.cfg.DatabasePath,
		ExportDir:    a.cfg.PlanExportDir,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\ndatabase %s (%d plans)  exports %s (%d plans)\n",
		h.DatabaseSize, h.StoredPlans, h.ExportSize, h.ExportedPlans)
	return nil
}

// CleanupMetrics removes metric records older than days.
func (a *App) CleanupMetrics(ctx context.Context, w io.Writer, days int) error {
	affected, err := a.metricsStore.Cleanup(ctx, days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	fmt.Fprintf(w, "Successfully removed %d old metric records.\n", affected)
	return nil
}

// PrintValidation prints the macro check for t and a suggestion when it fails.
func PrintValidation(w io.Writer, t macros.Target) {
	v := macros.Validate(t)
	if v.Valid {
		fmt.Fprintf(w, "OK: macros give %.0f kcal for a %.0f kcal target.\n", v.MacroCalories, t.Calories)
		return
	}
	fmt.Fprintf(w, "Mismatch: %s.\n", v.Message)
	s := macros.SuggestMacros(t.Calories)
	fmt.Fprintf(w, "Suggested: protein %.0fg, carbs %.0fg, fat %.0fg.\n", s.Protein, s.Carbs, s.Fat)
}

// PrintPlan prints a plan day by day.
func PrintPlan(w io.Writer, plan mealplan.MealPlanData) {
	fmt.Fprintln(w, "\n=== WEEKLY MEAL PLAN ===")
	for _, day := range plan.Days {
		fmt.Fprintf(w, "%-10s %s\n", day.Day, day.Date)
		if len(day.Meals) == 0 {
			fmt.Fprintln(w, "           (no meals)")
		}
		for _, m := range day.Meals {
			fmt.Fprintf(w, "           %-9s %s", m.MealType, m.Name)
			if m.Nutrition.Calories > 0 {
				fmt.Fprintf(w, " (%.0f kcal)", m.Nutrition.Calories)
			}
			fmt.Fprintln(w)
		}
		if day.DailyNotes != "" {
			fmt.Fprintf(w, "           Note: %s\n", day.DailyNotes)
		}
	}
	fmt.Fprintf(w, "\n%d meals, generated %s\n", plan.MealCount(), plan.GeneratedAt)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEntries(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No saved plans.")
		return
	}
	for _, e := range entries {
		when := e.GeneratedAt
		if when == "" {
			when = e.CreatedAt
		}
		fmt.Fprintf(w, "%-36s  %-25s  %-8s  %s\n", e.ID, when, e.PlanType, e.Summary)
	}
}
