// Package chat implements the conversational endpoints: message processing,
// session creation and session inspection.
package chat

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"calorie-chat/internal/core/calorie"
	"calorie-chat/internal/core/missing"
	"calorie-chat/internal/core/nlp"
	"calorie-chat/internal/core/session"
	"calorie-chat/internal/infrastructure/fallback"
	"calorie-chat/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MessageRequest is the body of POST /message
type MessageRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
	Country   string `json:"country"`
}

// MessageResponse is the reply to POST /message
type MessageResponse struct {
	Message               string                 `json:"message"`
	CalorieResult         *calorie.CalorieResult `json:"calorie_result,omitempty"`
	RequiresClarification bool                   `json:"requires_clarification"`
	SessionID             string                 `json:"session_id"`
}

// Handler wires the pipeline stages behind the chat routes
type Handler struct {
	nlp        *nlp.Engine
	calculator *calorie.Calculator
	sessions   session.Store
	estimator  fallback.Estimator
	missing    *missing.Log
}

// NewHandler creates the chat handler
func NewHandler(nlpEngine *nlp.Engine, calculator *calorie.Calculator, sessions session.Store, estimator fallback.Estimator, missingLog *missing.Log) *Handler {
	return &Handler{
		nlp:        nlpEngine,
		calculator: calculator,
		sessions:   sessions,
		estimator:  estimator,
		missing:    missingLog,
	}
}

// HandleMessage processes one chat message through the full pipeline
func (h *Handler) HandleMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(common.ErrInvalidRequest.Status, gin.H{
			"error": "message is required",
			"code":  common.ErrInvalidRequest.Code,
		})
		return
	}
	if req.Country != "" && !common.IsSupportedCountry(req.Country) {
		c.JSON(common.ErrUnsupportedCountry.Status, gin.H{
			"error": fmt.Sprintf("unsupported country %q", req.Country),
			"code":  common.ErrUnsupportedCountry.Code,
		})
		return
	}

	ctx := c.Request.Context()

	// unknown or expired session ids start a fresh session instead of failing
	sess, err := h.sessions.Get(ctx, req.SessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			common.LogError("session store unavailable", zap.Error(err))
			c.JSON(common.ErrServiceUnavailable.Status, gin.H{
				"error": common.ErrServiceUnavailable.Error(),
				"code":  common.ErrServiceUnavailable.Code,
			})
			return
		}
		sess, err = h.sessions.Create(ctx, req.Country)
		if err != nil {
			common.LogError("failed to create session", zap.Error(err))
			c.JSON(common.ErrInternalError.Status, gin.H{
				"error": "failed to create session",
				"code":  common.ErrInternalError.Code,
			})
			return
		}
	}

	country := req.Country
	if country == "" {
		country = sess.Country
	}

	query := h.nlp.ParseQuery(ctx, req.Message)
	sess.AddMessage("user", req.Message)

	switch query.Intent {
	case nlp.IntentGreeting:
		h.respond(c, sess, MessageResponse{
			Message:   greetingResponse(country),
			SessionID: sess.ID,
		})
		return
	case nlp.IntentHelp:
		h.respond(c, sess, MessageResponse{
			Message:   helpResponse(),
			SessionID: sess.ID,
		})
		return
	}

	result := h.calculator.Calculate(ctx, query, country, sess.LastResult)

	if result.IsNotFound() {
		if est := h.tryEstimate(c, query, country); est != nil {
			result = est
		} else {
			sess.AwaitingIngredients = true
			unknown := req.Message
			if len(query.FoodItems) > 0 {
				unknown = query.FoodItems[0]
			}
			h.respond(c, sess, MessageResponse{
				Message:               notFoundResponse(unknown),
				RequiresClarification: true,
				SessionID:             sess.ID,
			})
			return
		}
	}

	sess.LastDish = result.FoodName
	sess.LastResult = result
	sess.AwaitingIngredients = false

	h.respond(c, sess, MessageResponse{
		Message:       calorieResponse(result),
		CalorieResult: result,
		SessionID:     sess.ID,
	})
}

// tryEstimate consults the LLM estimator for dishes missing from the corpora.
// Returns nil when no usable estimate comes back; callers then ask the user
// for ingredients instead.
func (h *Handler) tryEstimate(c *gin.Context, query nlp.ParsedQuery, country string) *calorie.CalorieResult {
	if len(query.FoodItems) == 0 {
		return nil
	}
	foodName := query.FoodItems[0]

	start := time.Now()
	est, err := h.estimator.Estimate(c.Request.Context(), foodName, country, query.Modifications.Remove)
	common.LogCollaboratorCall("llm_fallback", time.Since(start), err)
	if err != nil {
		return nil
	}

	ingredients := make([]calorie.Ingredient, 0, len(est.Ingredients))
	var totalCal, totalWeight float64
	for _, ing := range est.Ingredients {
		ingredients = append(ingredients, calorie.Ingredient{
			Name:     ing.Name,
			WeightG:  ing.WeightG,
			Calories: ing.Calories,
		})
		totalCal += ing.Calories
		totalWeight += ing.WeightG
	}
	// the totals must stay consistent with the itemized lines; trust the
	// breakdown when the model provides one
	if len(ingredients) == 0 {
		ingredients = append(ingredients, calorie.Ingredient{
			Name:     est.FoodName,
			WeightG:  est.WeightG,
			Calories: est.TotalCalories,
		})
		totalCal = est.TotalCalories
		totalWeight = est.WeightG
	}

	if h.missing != nil {
		h.missing.Record(foodName, country, fmt.Sprintf("%s: %.0f kcal (%s confidence)", est.FoodName, totalCal, est.Confidence))
	}

	return &calorie.CalorieResult{
		FoodName:      est.FoodName,
		OriginalQuery: query.OriginalText,
		TotalCalories: totalCal,
		WeightG:       totalWeight,
		Ingredients:   ingredients,
		Modifications: []string{},
		Source:        "llm_fallback",
		Confidence:    estimateConfidence(est.Confidence),
		IsApproximate: true,
		Country:       country,
	}
}

// respond records the assistant turn, persists the session and writes the
// JSON response
func (h *Handler) respond(c *gin.Context, sess *session.Session, resp MessageResponse) {
	sess.AddMessage("assistant", resp.Message)
	if err := h.sessions.Update(c.Request.Context(), sess); err != nil {
		common.LogWarn("failed to persist session",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
	}
	c.JSON(http.StatusOK, resp)
}

// CreateSessionRequest is the body of POST /session
type CreateSessionRequest struct {
	Country string `json:"country"`
}

// HandleCreateSession starts a new conversation
func (h *Handler) HandleCreateSession(c *gin.Context) {
	var req CreateSessionRequest
	// body is optional; an empty one gets the default country
	_ = c.ShouldBindJSON(&req)

	if req.Country == "" {
		req.Country = "lebanon"
	}
	if !common.IsSupportedCountry(req.Country) {
		c.JSON(common.ErrUnsupportedCountry.Status, gin.H{
			"error": fmt.Sprintf("unsupported country %q", req.Country),
			"code":  common.ErrUnsupportedCountry.Code,
		})
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), strings.ToLower(req.Country))
	if err != nil {
		common.LogError("failed to create session", zap.Error(err))
		c.JSON(common.ErrInternalError.Status, gin.H{
			"error": "failed to create session",
			"code":  common.ErrInternalError.Code,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"country":    sess.Country,
	})
}

// HandleGetSession returns the session state, history included
func (h *Handler) HandleGetSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(common.ErrSessionNotFound.Status, gin.H{
				"error": common.ErrSessionNotFound.Error(),
				"code":  common.ErrSessionNotFound.Code,
			})
			return
		}
		common.LogError("session store unavailable", zap.Error(err))
		c.JSON(common.ErrServiceUnavailable.Status, gin.H{
			"error": common.ErrServiceUnavailable.Error(),
			"code":  common.ErrServiceUnavailable.Code,
		})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func estimateConfidence(level string) float64 {
	switch strings.ToLower(level) {
	case "high":
		return 0.8
	case "medium":
		return 0.6
	case "low":
		return 0.4
	default:
		return 0.5
	}
}
