package config

// 凭证解析查找的环境变量。带 ORPHEUS_ 前缀的优先于 OpenAI 兼容变量。
const (
	EnvAPIKey       = "ORPHEUS_API_KEY"
	EnvAPIKeyCompat = "OPENAI_API_KEY"

	EnvBaseURL       = "ORPHEUS_BASE_URL"
	EnvBaseURLCompat = "OPENAI_BASE_URL"
)

// OpenRouterBaseURL 是 OpenRouter 的 OpenAI 兼容端点。
// 不作为隐式默认值，调用方需要显式传入。
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// API 路径与请求标识
const (
	ChatCompletionsPath = "/chat/completions"
	EmbeddingsPath      = "/v1/embeddings"

	UserAgent = "Orpheus"
)
