package models

// ModelPricing defines per-million-token rates for a model, in USD.
type ModelPricing struct {
	Model         string  `json:"model" yaml:"model"`
	InputPerMTok  float64 `json:"input_per_mtok" yaml:"input_per_mtok"`
	OutputPerMTok float64 `json:"output_per_mtok" yaml:"output_per_mtok"`
}
