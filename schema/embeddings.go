package schema

import "encoding/json"

// EmbeddingInput is a closed union over the input shapes the embeddings
// endpoint accepts. Exactly four forms exist: a single string, a batch of
// strings, a single pre-tokenized sequence, and a batch of token sequences.
type EmbeddingInput interface {
	isEmbeddingInput()
	json.Marshaler
}

// InputText 单条文本输入
type InputText string

func (InputText) isEmbeddingInput() {}

func (t InputText) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// InputTexts 批量文本输入
type InputTexts []string

func (InputTexts) isEmbeddingInput() {}

func (t InputTexts) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(t))
}

// InputTokens 单条已分词输入
type InputTokens []int

func (InputTokens) isEmbeddingInput() {}

func (t InputTokens) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int(t))
}

// InputTokenBatches 批量已分词输入
type InputTokenBatches [][]int

func (InputTokenBatches) isEmbeddingInput() {}

func (t InputTokenBatches) MarshalJSON() ([]byte, error) {
	return json.Marshal([][]int(t))
}

// Embedding 是单条输入对应的向量
type Embedding struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
	Object    string    `json:"object"`
}

// Embeddings 是 embeddings 请求的完整结果
type Embeddings struct {
	Object string      `json:"object"`
	Data   []Embedding `json:"data"`
	Model  string      `json:"model"`
	Usage  Usage       `json:"usage"`
}
