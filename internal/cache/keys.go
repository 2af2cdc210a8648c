package cache

import "fmt"

func AnalysisKey(provider, model, codeHash string) string {
	return fmt.Sprintf("analysis:%s:%s:%s", provider, model, codeHash)
}

func RateLimitKey(clientID string) string {
	return fmt.Sprintf("ratelimit:%s", clientID)
}
