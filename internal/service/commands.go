package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mwhite7112/woodpantry-brewlist/internal/domain"
)

// Command actions.
const (
	ActionAddRecipe          = "add-recipe-to-list"
	ActionGetList            = "get-list"
	ActionClearList          = "clear-list"
	ActionRemoveItem         = "remove-item"
	ActionGetSubstitutions   = "get-substitutions"
	ActionRecompute          = "recompute-substitutions"
	ActionApplySubstitution  = "apply-substitution"
	ActionApplyBatch         = "apply-substitutions-batch"
	ActionClearSubstitutions = "clear-substitutions"
	ActionDismiss            = "dismiss-substitution"
	ActionGetAdvice          = "get-advice"
	ActionExportList         = "export-list"
	ActionDiscoverRecipes    = "discover-recipes"
	ActionGetSettings        = "get-settings"
	ActionSaveSettings       = "save-settings"
	ActionSaveCredentials    = "save-credentials"
)

// actionUnknown is the metrics label for actions outside the command set.
const actionUnknown = "unknown"

var knownActions = map[string]bool{
	ActionAddRecipe: true, ActionGetList: true, ActionClearList: true, ActionRemoveItem: true,
	ActionGetSubstitutions: true, ActionRecompute: true, ActionApplySubstitution: true,
	ActionApplyBatch: true, ActionClearSubstitutions: true, ActionDismiss: true,
	ActionGetAdvice: true, ActionExportList: true, ActionDiscoverRecipes: true,
	ActionGetSettings: true, ActionSaveSettings: true, ActionSaveCredentials: true,
}

// metricLabel keeps the metrics label set bounded by the command set.
func metricLabel(action string) string {
	if knownActions[action] {
		return action
	}
	return actionUnknown
}

// Command is one request from a caller. Only the fields the action needs
// are read.
type Command struct {
	Action             string              `json:"action"`
	RecipeID           string              `json:"recipeId,omitempty"`
	IngredientID       string              `json:"ingredientId,omitempty"`
	SubstitutionID     string              `json:"substitutionId,omitempty"`
	ChosenIngredientID string              `json:"chosenIngredientId,omitempty"`
	Selections         []domain.Selection  `json:"selections,omitempty"`
	Format             string              `json:"format,omitempty"`
	Archive            bool                `json:"archive,omitempty"`
	URL                string              `json:"url,omitempty"`
	HTML               string              `json:"html,omitempty"`
	Settings           *domain.Settings    `json:"settings,omitempty"`
	Credentials        *domain.Credentials `json:"credentials,omitempty"`
}

// Envelope is the uniform command result.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`
}

// Dispatch runs cmd and reports the outcome as an Envelope. It never panics
// and never returns a Go error; failures are carried in the envelope.
func (s *Service) Dispatch(ctx context.Context, cmd Command) (env Envelope) {
	start := time.Now()
	s.log.Debug("command %s", cmd.Action)
	defer func() {
		if r := recover(); r != nil {
			env = failure(nil, fmt.Errorf("command %s panicked: %v", cmd.Action, r))
		}
		if !env.Success {
			s.log.Warn("command %s failed: %s", cmd.Action, env.Error)
		}
		s.metrics.Observe(ctx, metricLabel(cmd.Action), env.Success, time.Since(start))
	}()

	data, err := s.run(ctx, cmd)
	if err != nil {
		return failure(data, err)
	}
	return Envelope{Success: true, Data: data}
}

func (s *Service) run(ctx context.Context, cmd Command) (any, error) {
	switch cmd.Action {
	case ActionAddRecipe:
		return s.AddRecipe(ctx, cmd.RecipeID)
	case ActionGetList:
		return s.GetList(ctx)
	case ActionClearList:
		return nil, s.ClearList(ctx)
	case ActionRemoveItem:
		return s.RemoveItem(ctx, cmd.IngredientID)
	case ActionGetSubstitutions:
		return s.GetSubstitutions(ctx)
	case ActionRecompute:
		return s.RecomputeSubstitutions(ctx)
	case ActionApplySubstitution:
		return s.ApplySubstitution(ctx, cmd.SubstitutionID, cmd.ChosenIngredientID)
	case ActionApplyBatch:
		res, err := s.ApplySubstitutions(ctx, cmd.Selections)
		if err != nil && len(res.Outcomes) == 0 {
			return nil, err
		}
		return res, err
	case ActionClearSubstitutions:
		return nil, s.ClearSubstitutions(ctx)
	case ActionDismiss:
		return s.DismissSubstitution(ctx, cmd.SubstitutionID)
	case ActionGetAdvice:
		return s.GetAdvice(ctx, cmd.IngredientID)
	case ActionExportList:
		return s.Export(ctx, cmd.Format, cmd.Archive)
	case ActionDiscoverRecipes:
		return s.DiscoverRecipes(ctx, cmd.URL, cmd.HTML)
	case ActionGetSettings:
		return s.GetSettings(ctx)
	case ActionSaveSettings:
		if cmd.Settings == nil {
			return nil, fmt.Errorf("%w: settings required", domain.ErrInvalidInput)
		}
		return s.SaveSettings(ctx, *cmd.Settings)
	case ActionSaveCredentials:
		if cmd.Credentials == nil {
			return nil, fmt.Errorf("%w: credentials required", domain.ErrInvalidInput)
		}
		return nil, s.SaveCredentials(ctx, *cmd.Credentials)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, cmd.Action)
	}
}

// failure keeps data only for partial results such as a batch apply.
func failure(data any, err error) Envelope {
	env := Envelope{Error: err.Error(), ErrorKind: domain.ErrorKind(err)}
	if _, partial := data.(BatchResult); partial {
		env.Data = data
	}
	return env
}
