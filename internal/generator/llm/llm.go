// Package llm implements a method generator backed by a large language model.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/elecmate/mmgen/internal/generator"
	"github.com/elecmate/mmgen/internal/log"
	"github.com/elecmate/mmgen/internal/method"
	"github.com/elecmate/mmgen/internal/model"
)

const systemPrompt = `You are a senior UK electrical contractor writing maintenance method statements.
Follow BS 7671 (18th Edition), the Electricity at Work Regulations 1989 and the relevant BS EN standards.
Reply ONLY with a JSON object with the fields: title, summary, frequency, requiredQualifications,
recommendations and steps. Each step has: stepNumber, title, content, estimatedDuration (e.g. "15 mins"),
and optionally safety, toolsRequired, materialsNeeded, inspectionCheckpoints, bsReferences,
linkedHazards, qualifications, observations and defectCodes (arrays of strings).`

// GeneratorConfig is the configuration of the LLM generator.
type GeneratorConfig struct {
	Model       llms.Model
	Temperature float64
	Logger      log.Logger
}

func (c *GeneratorConfig) defaults() error {
	if c.Model == nil {
		return fmt.Errorf("model is required")
	}

	if c.Temperature == 0 {
		c.Temperature = 0.2
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "generator.llm"})

	return nil
}

// Generator generates methods prompting a language model.
type Generator struct {
	model       llms.Model
	temperature float64
	schema      *jsonschema.Schema
	logger      log.Logger
}

// NewGenerator returns a new LLM generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("method.json", strings.NewReader(methodSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("method.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Generator{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		schema:      schema,
		logger:      cfg.Logger,
	}, nil
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewOpenAIModel returns a langchaingo OpenAI model.
func NewOpenAIModel(cfg OpenAIConfig) (llms.Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required: %w", model.ErrNotValid)
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create openai client: %w", err)
	}
	return m, nil
}

var _ generator.Generator = &Generator{}

// Generate prompts the model and returns the validated method.
func (g *Generator) Generate(ctx context.Context, req generator.Request, progress generator.ProgressFunc) (*model.MethodData, error) {
	if progress == nil {
		progress = generator.NoopProgress
	}

	if err := progress(ctx, 10, "Preparing prompt"); err != nil {
		return nil, err
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt(req))},
		},
	}

	if err := progress(ctx, 30, "Generating maintenance method"); err != nil {
		return nil, err
	}

	resp, err := g.model.GenerateContent(ctx, messages, llms.WithJSONMode(), llms.WithTemperature(g.temperature))
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	if err := progress(ctx, 85, "Validating generated method"); err != nil {
		return nil, err
	}

	data := []byte(stripCodeFence(resp.Choices[0].Content))
	md, err := g.decode(data)
	if err != nil {
		g.logger.Warningf("Invalid model reply: %s", err)
		return nil, err
	}

	return md, nil
}

func (g *Generator) decode(data []byte) (*model.MethodData, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("model reply is not JSON: %w", err)
	}
	if err := g.schema.Validate(v); err != nil {
		return nil, fmt.Errorf("model reply does not match schema: %w", err)
	}

	var md model.MethodData
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("could not decode method: %w", err)
	}
	md.Steps = method.Renumber(md.Steps)
	if md.Recommendations == nil {
		md.Recommendations = []string{}
	}

	return &md, nil
}

func userPrompt(req generator.Request) string {
	eq := req.EquipmentDetails

	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n", strings.TrimSpace(req.Query))
	fields := []struct{ name, value string }{
		{"Equipment type", eq.EquipmentType},
		{"Location", eq.Location},
		{"Installation type", eq.InstallationType},
		{"Age (years)", eq.AgeYears},
		{"Last inspection date", eq.LastInspectionDate},
		{"Known issues", eq.KnownIssues},
		{"Additional notes", eq.AdditionalNotes},
	}
	for _, f := range fields {
		if v := strings.TrimSpace(f.value); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.name, v)
		}
	}
	if req.DetailLevel == model.DetailLevelDetailed {
		b.WriteString("Produce a detailed method including inspection checkpoints and BS references for every step.\n")
	}

	return b.String()
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
