package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fakhrymubarak/character-challenge-api/internal/config"
	"github.com/fakhrymubarak/character-challenge-api/internal/metrics"
	"github.com/fakhrymubarak/character-challenge-api/internal/model"
	"github.com/fakhrymubarak/character-challenge-api/internal/service"
)

const invalidParametersMessage = "Invalid parameters"

type CharacterHandler struct {
	CharacterService service.CharacterServiceInterface
}

func NewCharacterHandler(svc ...service.CharacterServiceInterface) *CharacterHandler {
	var characterService service.CharacterServiceInterface
	if len(svc) > 0 && svc[0] != nil {
		characterService = svc[0]
	} else {
		characterService = service.NewCharacterService()
	}
	return &CharacterHandler{
		CharacterService: characterService,
	}
}

func (h *CharacterHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

func (h *CharacterHandler) writeResult(w http.ResponseWriter, result model.Result) {
	metrics.Responses.WithLabelValues(outcome(result)).Inc()
	h.writeJSONResponse(w, result.StatusCode(), result.Body())
}

// HandleChallenge serves GET /challengeapi.
func (h *CharacterHandler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.writeResult(w, model.Failure{Code: http.StatusMethodNotAllowed, Message: "Method not allowed"})
		return
	}

	characters, err := h.CharacterService.GetCharacters(r.Context())
	if err != nil {
		config.GetLogger().Errorw("Failed to aggregate characters", "error", err)
		h.writeResult(w, classifyError(err))
		return
	}

	metrics.CharactersReturned.Observe(float64(len(characters)))
	h.writeResult(w, model.NewResult(characters))
}

// classifyError maps an aggregation failure onto its transport-level result.
func classifyError(err error) model.Result {
	if errors.Is(err, service.ErrInvalidParameters) {
		return model.Failure{Code: http.StatusBadRequest, Message: invalidParametersMessage}
	}
	return model.Failure{Code: http.StatusInternalServerError, Message: err.Error()}
}

func outcome(result model.Result) string {
	switch result.(type) {
	case model.Success:
		return "success"
	case model.Empty:
		return "empty"
	default:
		return "failure"
	}
}
