package shopping

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"shopping-list-engine/internal/api/middleware"
	"shopping-list-engine/internal/core/shopping"
	"shopping-list-engine/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 請求上限
const (
	maxRecipeIDs   = 200
	maxExtraItems  = 200
	maxExtraLength = 500
	maxMeals       = 50
	maxNames       = 500
)

// ListBuilder 購物清單建立
type ListBuilder interface {
	Build(ctx context.Context, req shopping.Request) (*shopping.Response, error)
	BuildFromMeals(ctx context.Context, meals []shopping.ParsedMeal) (*shopping.MealPlanResult, error)
}

// CanonicalService 食材名稱正規化與其緩存
type CanonicalService interface {
	Canonicalize(ctx context.Context, names []string) map[string]string
	ClearCache(ctx context.Context) error
}

// MealsRequest 以餐點建立購物清單
type MealsRequest struct {
	Meals []shopping.ParsedMeal `json:"meals" binding:"required"`
}

// CanonicalRequest 正規化名稱
type CanonicalRequest struct {
	Names []string `json:"names" binding:"required"`
}

// Handler 購物清單處理器
type Handler struct {
	builder   ListBuilder
	canonical CanonicalService
}

// NewHandler 創建購物清單處理器
func NewHandler(builder ListBuilder, canonical CanonicalService) *Handler {
	return &Handler{builder: builder, canonical: canonical}
}

// Register 註冊路由
func (h *Handler) Register(group *gin.RouterGroup) {
	group.POST("/shopping-list", h.HandleShoppingList)
	group.POST("/shopping-list/meals", h.HandleMealPlan)
	group.POST("/canonical", h.HandleCanonical)
	group.DELETE("/canonical/cache", h.HandleClearCache)
}

// HandleShoppingList 以食譜 id 與額外項目建立購物清單
func (h *Handler) HandleShoppingList(c *gin.Context) {
	var req shopping.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, common.NewValidationError("請求格式錯誤: "+err.Error()))
		return
	}
	if err := validateRequest(req); err != nil {
		middleware.RespondError(c, err)
		return
	}

	resp, err := h.builder.Build(c.Request.Context(), req)
	if err != nil {
		common.LogError("建立購物清單失敗",
			zap.String("request_id", requestid.Get(c)),
			zap.Error(err),
		)
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleMealPlan 由外部解析的餐點建立購物清單
func (h *Handler) HandleMealPlan(c *gin.Context) {
	var req MealsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, common.NewValidationError("請求格式錯誤: "+err.Error()))
		return
	}
	if len(req.Meals) > maxMeals {
		middleware.RespondError(c, common.NewValidationError(fmt.Sprintf("餐點數量不可超過 %d", maxMeals)))
		return
	}
	for _, meal := range req.Meals {
		if err := validateExtras(meal.FreeTextItems); err != nil {
			middleware.RespondError(c, err)
			return
		}
	}

	result, err := h.builder.BuildFromMeals(c.Request.Context(), req.Meals)
	if err != nil {
		common.LogError("由餐點建立購物清單失敗",
			zap.String("request_id", requestid.Get(c)),
			zap.Int("meals", len(req.Meals)),
			zap.Error(err),
		)
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleCanonical 回傳名稱的正規化對應，失敗時為原名
func (h *Handler) HandleCanonical(c *gin.Context) {
	var req CanonicalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, common.NewValidationError("請求格式錯誤: "+err.Error()))
		return
	}
	if len(req.Names) > maxNames {
		middleware.RespondError(c, common.NewValidationError(fmt.Sprintf("名稱數量不可超過 %d", maxNames)))
		return
	}

	mapping := h.canonical.Canonicalize(c.Request.Context(), req.Names)
	c.JSON(http.StatusOK, gin.H{"mapping": mapping})
}

// HandleClearCache 清空正規化緩存
func (h *Handler) HandleClearCache(c *gin.Context) {
	if err := h.canonical.ClearCache(c.Request.Context()); err != nil {
		middleware.RespondError(c, err)
		return
	}
	common.LogInfo("正規化緩存已清空", zap.String("request_id", requestid.Get(c)))
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func validateRequest(req shopping.Request) error {
	if len(req.RecipeIDs) > maxRecipeIDs {
		return common.NewValidationError(fmt.Sprintf("食譜數量不可超過 %d", maxRecipeIDs))
	}
	return validateExtras(req.ExtraItems)
}

func validateExtras(extras []string) error {
	if len(extras) > maxExtraItems {
		return common.NewValidationError(fmt.Sprintf("額外項目不可超過 %d", maxExtraItems))
	}
	for _, e := range extras {
		if len([]rune(strings.TrimSpace(e))) > maxExtraLength {
			return common.NewValidationError(fmt.Sprintf("額外項目長度不可超過 %d 字", maxExtraLength))
		}
	}
	return nil
}
