package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/dexstruct/domain"
)

// ErrorCategorizerImpl maps errors to user-facing categories
type ErrorCategorizerImpl struct {
	byCode   map[string]domain.ErrorCategory
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() *ErrorCategorizerImpl {
	return &ErrorCategorizerImpl{
		byCode: map[string]domain.ErrorCategory{
			domain.ErrCodeInvalidInput:      domain.ErrorCategoryInput,
			domain.ErrCodeFileNotFound:      domain.ErrorCategoryInput,
			domain.ErrCodeParseError:        domain.ErrorCategoryInput,
			domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
			domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
			domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryOutput,
			domain.ErrCodeStructureError:    domain.ErrorCategoryProcessing,
			domain.ErrCodeNondeterministic:  domain.ErrorCategoryProcessing,
			domain.ErrCodeAnalysisError:     domain.ErrorCategoryProcessing,
		},
		// Ordered: the first matching category wins
		patterns: []categoryPatterns{
			{domain.ErrorCategoryTimeout, []string{"timed out", "deadline", "context canceled"}},
			{domain.ErrorCategoryConfig, []string{"config", "toml"}},
			{domain.ErrorCategoryInput, []string{"no such file", "not found", "permission denied", "no graph files"}},
			{domain.ErrorCategoryOutput, []string{"write", "output", "cannot create"}},
			{domain.ErrorCategoryProcessing, []string{"structure", "region", "loop", "block", "decode"}},
		},
	}
}

// Categorize determines the category of an error. Deadlines and domain error
// codes take precedence over message patterns.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	category := domain.ErrorCategoryUnknown
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		category = domain.ErrorCategoryTimeout
	default:
		if c, ok := ec.byCode[domain.ErrorCode(err)]; ok {
			category = c
		} else {
			msg := strings.ToLower(err.Error())
			for _, cp := range ec.patterns {
				if containsAnyPattern(msg, cp.patterns) {
					category = cp.category
					break
				}
			}
		}
	}

	message := ec.getCategoryMessage(category)
	if category == domain.ErrorCategoryUnknown {
		message = err.Error()
	}
	return &domain.CategorizedError{
		Category: category,
		Message:  message,
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	switch category {
	case domain.ErrorCategoryInput:
		return []string{
			"Check that the paths exist and hold .json, .yaml or .msgpack graph documents",
			"Check --include and --exclude patterns",
			"Validate that every edge, handler and latch names the offset of a block",
		}
	case domain.ErrorCategoryConfig:
		return []string{
			"Verify .dexstruct.toml syntax and values",
			"Try: dexstruct init --force to regenerate the config file",
		}
	case domain.ErrorCategoryTimeout:
		return []string{
			"Increase --timeout or structure fewer files at once",
			"Raise --jobs if the machine has idle cores",
		}
	case domain.ErrorCategoryOutput:
		return []string{
			"Use one of: text, json, yaml, csv, msgpack",
			"Ensure the output directory exists and is writable",
		}
	case domain.ErrorCategoryProcessing:
		return []string{
			"Check that loop headers carry a loop tag, or pass --detect-loops",
			"Posttest loops need a latch offset",
			"Run with --verbose to see per-method diagnostics",
		}
	default:
		return []string{
			"Run with --verbose for detailed error information",
		}
	}
}

func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	switch category {
	case domain.ErrorCategoryInput:
		return "Failed to read graph documents"
	case domain.ErrorCategoryConfig:
		return "Configuration file or settings error"
	case domain.ErrorCategoryTimeout:
		return "Structuring timed out"
	case domain.ErrorCategoryOutput:
		return "Failed to generate or write output"
	case domain.ErrorCategoryProcessing:
		return "Error while structuring control flow"
	default:
		return "An unexpected error occurred"
	}
}

func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
