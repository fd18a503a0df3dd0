package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwhite7112/woodpantry-brewlist/internal/blob"
	"github.com/mwhite7112/woodpantry-brewlist/internal/clients"
	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
	"github.com/mwhite7112/woodpantry-brewlist/internal/export"
	"github.com/mwhite7112/woodpantry-brewlist/internal/logger"
	"github.com/mwhite7112/woodpantry-brewlist/internal/maltdb"
	"github.com/mwhite7112/woodpantry-brewlist/internal/metrics"
	"github.com/mwhite7112/woodpantry-brewlist/internal/pagescan"
)

// RecipeSource fetches one recipe by id.
type RecipeSource interface {
	GetRecipe(ctx context.Context, recipeID string) (*clients.Recipe, error)
}

// PageSource fetches a web page for recipe discovery.
type PageSource interface {
	FetchPage(ctx context.Context, pageURL string) (io.ReadCloser, error)
}

// StateStore is everything the service persists.
type StateStore interface {
	domain.ListStore
	domain.SubstitutionStore
	domain.CredentialStore
	domain.SettingsStore
	SaveListState(ctx context.Context, list domain.ShoppingList, set domain.SubstitutionSet, raiseShowOnOpen bool) error
	TakeShowOnOpen(ctx context.Context) (bool, error)
}

// groupGauge is implemented by recorders that track the pending group count.
type groupGauge interface {
	SetGroups(n int)
}

// exportPrefix is the blob key prefix for archived exports.
const exportPrefix = "exports/"

// Service runs the shopping-list commands. Every read-modify-write of the
// stored list and substitution set happens under mu; recipe fetches, page
// fetches and table loads do not.
type Service struct {
	mu      sync.Mutex
	recipes RecipeSource
	tables  maltdb.Source
	state   StateStore
	blobs   blob.Store
	pages   PageSource
	hosts   []string
	metrics metrics.Recorder
	log     *logger.Logger
	newID   func() string
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithBlobStore enables export archiving.
func WithBlobStore(bs blob.Store) Option {
	return func(s *Service) { s.blobs = bs }
}

// WithPageSource enables discovery from page URLs.
func WithPageSource(p PageSource) Option {
	return func(s *Service) { s.pages = p }
}

// WithRecipeHosts replaces the hosts discovery may fetch pages from.
func WithRecipeHosts(hosts []string) Option {
	return func(s *Service) { s.hosts = hosts }
}

// WithMetrics sets the command metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithIDGenerator replaces the substitution group id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

func New(recipes RecipeSource, tables maltdb.Source, state StateStore, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		recipes: recipes,
		tables:  tables,
		state:   state,
		hosts:   pagescan.DefaultRecipeHosts,
		metrics: metrics.Noop{},
		log:     log,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddResult summarizes add-recipe-to-list.
type AddResult struct {
	RecipeName       string `json:"recipeName"`
	IngredientsAdded int    `json:"ingredientsAdded"`
	TotalItems       int    `json:"totalItems"`
}

// ListView is the get-list result.
type ListView struct {
	Items      domain.ShoppingList `json:"items"`
	ShowOnOpen bool                `json:"showShoppingListOnOpen"`
}

// ApplyResult is the state after one resolved substitution.
type ApplyResult struct {
	List          domain.ShoppingList    `json:"shoppingList"`
	Substitutions domain.SubstitutionSet `json:"substitutions"`
}

// SelectionOutcome reports one pair of a batch apply.
type SelectionOutcome struct {
	domain.Selection
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchResult is the apply-substitutions-batch result.
type BatchResult struct {
	Applied  int                `json:"applied"`
	Outcomes []SelectionOutcome `json:"outcomes"`
	ApplyResult
}

// ExportResult is a rendered export; Content is base64 in JSON.
type ExportResult struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
	ArchiveKey  string `json:"archiveKey,omitempty"`
}

// AddRecipe fetches a recipe (by id or recipe URL), merges its ingredients
// into the list and recomputes substitutions.
func (s *Service) AddRecipe(ctx context.Context, recipeRef string) (AddResult, error) {
	recipeID := pagescan.ResolveRecipeID(recipeRef)
	if recipeID == "" {
		return AddResult{}, fmt.Errorf("%w: recipe id required", domain.ErrInvalidInput)
	}
	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return AddResult{}, fmt.Errorf("fetch recipe: %w", err)
	}
	records := Extract(recipe)
	table := s.loadTable(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.state.LoadList(ctx)
	if err != nil {
		return AddResult{}, err
	}
	list = Merge(list, records)
	if err := s.commit(ctx, list, s.match(list, table), true); err != nil {
		return AddResult{}, err
	}
	s.log.Info("added recipe %q: %d ingredients, list has %d items", recipe.Name, len(records), len(list))
	return AddResult{RecipeName: recipe.Name, IngredientsAdded: len(records), TotalItems: len(list)}, nil
}

// GetList returns the list and the pending show-on-open flag, resetting it.
func (s *Service) GetList(ctx context.Context) (ListView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.state.LoadList(ctx)
	if err != nil {
		return ListView{}, err
	}
	show, err := s.state.TakeShowOnOpen(ctx)
	if err != nil {
		return ListView{}, err
	}
	return ListView{Items: list, ShowOnOpen: show}, nil
}

// ClearList empties the list and the substitution set.
func (s *Service) ClearList(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, domain.ShoppingList{}, domain.SubstitutionSet{}, false)
}

// RemoveItem drops one entry and recomputes substitutions.
func (s *Service) RemoveItem(ctx context.Context, ingredientID string) (domain.ShoppingList, error) {
	if ingredientID == "" {
		return nil, fmt.Errorf("%w: ingredient id required", domain.ErrInvalidInput)
	}
	table := s.loadTable(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.state.LoadList(ctx)
	if err != nil {
		return nil, err
	}
	list = RemoveOne(list, ingredientID)
	if err := s.commit(ctx, list, s.match(list, table), false); err != nil {
		return nil, err
	}
	return list, nil
}

// GetSubstitutions returns the stored set.
func (s *Service) GetSubstitutions(ctx context.Context) (domain.SubstitutionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LoadSubstitutions(ctx)
}

// RecomputeSubstitutions replaces the stored set with a fresh computation.
func (s *Service) RecomputeSubstitutions(ctx context.Context) (domain.SubstitutionSet, error) {
	table := s.loadTable(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.state.LoadList(ctx)
	if err != nil {
		return nil, err
	}
	set := s.match(list, table)
	if err := s.state.SaveSubstitutions(ctx, set); err != nil {
		return nil, err
	}
	s.setGroups(len(set))
	return set, nil
}

// ApplySubstitution resolves one group.
func (s *Service) ApplySubstitution(ctx context.Context, subID, chosenID string) (ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ctx, subID, chosenID)
}

// ApplySubstitutions resolves the selections strictly in order, each one
// loading and saving the state before the next starts. A failing pair does
// not stop the rest; the error joins every failure.
func (s *Service) ApplySubstitutions(ctx context.Context, selections []domain.Selection) (BatchResult, error) {
	if len(selections) == 0 {
		return BatchResult{}, fmt.Errorf("%w: no selections", domain.ErrInvalidInput)
	}
	var (
		res  = BatchResult{Outcomes: make([]SelectionOutcome, 0, len(selections))}
		errs []error
	)
	for _, sel := range selections {
		s.mu.Lock()
		applied, err := s.applyLocked(ctx, sel.SubstitutionID, sel.ChosenIngredientID)
		s.mu.Unlock()

		outcome := SelectionOutcome{Selection: sel, Success: err == nil}
		if err != nil {
			outcome.Error = err.Error()
			errs = append(errs, err)
		} else {
			res.Applied++
			res.ApplyResult = applied
		}
		res.Outcomes = append(res.Outcomes, outcome)
	}
	if res.Applied == 0 {
		list, subs, err := s.snapshot(ctx)
		if err != nil {
			return res, err
		}
		res.ApplyResult = ApplyResult{List: list, Substitutions: subs}
	}
	return res, errors.Join(errs...)
}

// ClearSubstitutions drops every pending group.
func (s *Service) ClearSubstitutions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.SaveSubstitutions(ctx, domain.SubstitutionSet{}); err != nil {
		return err
	}
	s.setGroups(0)
	return nil
}

// DismissSubstitution drops one pending group and leaves the list alone.
func (s *Service) DismissSubstitution(ctx context.Context, subID string) (domain.SubstitutionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.state.LoadSubstitutions(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := set.Find(subID); !ok {
		return nil, fmt.Errorf("substitution %s: %w", subID, domain.ErrNotFound)
	}
	set = set.Without(subID)
	if err := s.state.SaveSubstitutions(ctx, set); err != nil {
		return nil, err
	}
	s.setGroups(len(set))
	s.log.Debug("dismissed substitution %s", subID)
	return set, nil
}

// GetAdvice returns substitution advice for a listed fermentable. It is nil
// for other ingredient types and when the reference table cannot be loaded.
func (s *Service) GetAdvice(ctx context.Context, ingredientID string) (*maltdb.Advice, error) {
	s.mu.Lock()
	list, err := s.state.LoadList(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	i := list.Index(ingredientID)
	if i < 0 {
		return nil, fmt.Errorf("ingredient %s: %w", ingredientID, domain.ErrNotFound)
	}
	if !list[i].IsFermentable() {
		return nil, nil
	}
	table := s.loadTable(ctx)
	if table == nil {
		return nil, nil
	}
	adv := table.Advise(grainOf(list[i]))
	return &adv, nil
}

// Export renders the list in format using the stored color unit. With
// archive set the file is also written to the blob store.
func (s *Service) Export(ctx context.Context, format string, archive bool) (ExportResult, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return ExportResult{}, err
	}
	s.mu.Lock()
	list, err := s.state.LoadList(ctx)
	var settings domain.Settings
	if err == nil {
		settings, err = s.state.LoadSettings(ctx)
	}
	s.mu.Unlock()
	if err != nil {
		return ExportResult{}, err
	}
	return s.render(ctx, list, f, settings.ColorUnit, archive)
}

func (s *Service) render(ctx context.Context, list domain.ShoppingList, f export.Format, colorUnit string, archive bool) (ExportResult, error) {
	doc, err := export.Render(list, f, export.Options{ColorUnit: colorUnit, Now: s.now()})
	if err != nil {
		return ExportResult{}, err
	}
	res := ExportResult{Filename: doc.Filename, ContentType: doc.ContentType, Content: doc.Data}
	if !archive {
		return res, nil
	}
	if s.blobs == nil {
		return ExportResult{}, fmt.Errorf("%w: no blob store for archiving", domain.ErrConfiguration)
	}
	key := exportPrefix + doc.Filename
	if _, err := s.blobs.Put(ctx, key, bytes.NewReader(doc.Data), blob.PutOptions{ContentType: doc.ContentType}); err != nil {
		return ExportResult{}, fmt.Errorf("archive export: %w", err)
	}
	s.log.Info("archived export to %s (%s)", key, s.blobs.Driver())
	res.ArchiveKey = key
	return res, nil
}

// DiscoverRecipes finds recipe ids in html, or in pageURL when it is a recipe
// link, or in the page fetched from pageURL.
func (s *Service) DiscoverRecipes(ctx context.Context, pageURL, html string) ([]string, error) {
	if strings.TrimSpace(html) != "" {
		return pagescan.RecipeIDsFromHTML(strings.NewReader(html))
	}
	if strings.TrimSpace(pageURL) == "" {
		return nil, fmt.Errorf("%w: url or html required", domain.ErrInvalidInput)
	}
	if id, ok := pagescan.RecipeIDFromURL(pageURL); ok {
		return []string{id}, nil
	}
	if _, err := pagescan.CheckPageURL(pageURL, s.hosts); err != nil {
		return nil, err
	}
	if s.pages == nil {
		return []string{}, nil
	}
	body, err := s.pages.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer body.Close()
	return pagescan.RecipeIDsFromHTML(body)
}

func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	return s.state.LoadSettings(ctx)
}

// SaveSettings validates and stores preferences; empty fields take defaults.
func (s *Service) SaveSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	settings = settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	if err := s.state.SaveSettings(ctx, settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// SaveCredentials stores the recipe API credentials.
func (s *Service) SaveCredentials(ctx context.Context, creds domain.Credentials) error {
	creds.UserID = strings.TrimSpace(creds.UserID)
	creds.APIKey = strings.TrimSpace(creds.APIKey)
	if !creds.Complete() {
		return fmt.Errorf("%w: user id and API key are both required", domain.ErrInvalidInput)
	}
	return s.state.SaveCredentials(ctx, creds)
}

func (s *Service) applyLocked(ctx context.Context, subID, chosenID string) (ApplyResult, error) {
	list, err := s.state.LoadList(ctx)
	if err != nil {
		return ApplyResult{}, err
	}
	set, err := s.state.LoadSubstitutions(ctx)
	if err != nil {
		return ApplyResult{}, err
	}
	list, set, err = Resolve(list, set, subID, chosenID)
	if err != nil {
		return ApplyResult{}, err
	}
	if err := s.commit(ctx, list, set, false); err != nil {
		return ApplyResult{}, err
	}
	s.log.Debug("applied substitution %s with %s", subID, chosenID)
	return ApplyResult{List: list, Substitutions: set}, nil
}

func (s *Service) snapshot(ctx context.Context) (domain.ShoppingList, domain.SubstitutionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.state.LoadList(ctx)
	if err != nil {
		return nil, nil, err
	}
	set, err := s.state.LoadSubstitutions(ctx)
	if err != nil {
		return nil, nil, err
	}
	return list, set, nil
}

func (s *Service) match(list domain.ShoppingList, table *maltdb.Table) domain.SubstitutionSet {
	set := Matcher{Table: table, NewID: s.newID}.FindSubstitutions(list)
	s.log.Debug("recomputed substitutions: %d groups", len(set))
	return set
}

// commit writes the list and its set together; mu must be held.
func (s *Service) commit(ctx context.Context, list domain.ShoppingList, set domain.SubstitutionSet, raiseShowOnOpen bool) error {
	if err := s.state.SaveListState(ctx, list, set, raiseShowOnOpen); err != nil {
		return err
	}
	s.setGroups(len(set))
	return nil
}

// loadTable returns nil when no table can be loaded, which puts the matcher
// in fallback mode.
func (s *Service) loadTable(ctx context.Context) *maltdb.Table {
	if s.tables == nil {
		return nil
	}
	table, err := s.tables.Load(ctx)
	if err != nil {
		s.log.Warn("malt table unavailable, using fallback matching: %v", err)
		return nil
	}
	return table
}

func (s *Service) setGroups(n int) {
	if g, ok := s.metrics.(groupGauge); ok {
		g.SetGroups(n)
	}
}
