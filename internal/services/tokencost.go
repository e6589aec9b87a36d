package services

import (
	"strings"

	"github.com/yungbote/virtual-client-backend/internal/logger"
)

// charsPerToken is the rough prompt-side estimate used when the provider has
// not reported usage yet. Provider numbers win once a response arrives.
const charsPerToken = 4

// modelPricing is USD per million tokens.
type modelPricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

var pricingTable = map[string]modelPricing{
	"claude-3-5-sonnet-20241022": {InputPerMTok: 3.00, OutputPerMTok: 15.00},
	"claude-3-5-haiku-20241022":  {InputPerMTok: 0.80, OutputPerMTok: 4.00},
	"claude-3-opus-20240229":     {InputPerMTok: 15.00, OutputPerMTok: 75.00},
	"claude-3-haiku-20240307":    {InputPerMTok: 0.25, OutputPerMTok: 1.25},
}

// defaultPricing covers models missing from the table so cost accumulation
// never silently drops to zero.
var defaultPricing = modelPricing{InputPerMTok: 3.00, OutputPerMTok: 15.00}

type TokenCostService interface {
	EstimateTokens(text string) int
	EstimateCost(model string, inputTokens, outputTokens int) float64
}

type tokenCostService struct {
	log *logger.Logger
}

func NewTokenCostService(baseLog *logger.Logger) TokenCostService {
	return &tokenCostService{
		log: baseLog.With("service", "TokenCostService"),
	}
}

func (s *tokenCostService) EstimateTokens(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	n := len(trimmed) / charsPerToken
	if n == 0 {
		n = 1
	}
	return n
}

func (s *tokenCostService) EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := pricingTable[model]
	if !ok {
		pricing = defaultPricing
	}
	return float64(inputTokens)/1_000_000*pricing.InputPerMTok +
		float64(outputTokens)/1_000_000*pricing.OutputPerMTok
}
