// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/topical/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// KeywordLabeler implements ai.KeywordLabeler using OpenAI-compatible chat APIs.
type KeywordLabeler struct {
	client llms.Model
	logger *slog.Logger
}

// newKeywordLabeler is an internal constructor that returns the concrete type.
func newKeywordLabeler(config *ai.Config) (*KeywordLabeler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.LabelerHost),
		openai.WithToken("none"),
		openai.WithModel(config.LabelerModel),
	)
	if err != nil {
		return nil, err
	}

	return &KeywordLabeler{
		client: client,
		logger: slog.Default().With("component", "openai-labeler"),
	}, nil
}

// NewKeywordLabeler creates a new keyword labeler using the provided
// configuration.
//
// Returns ai.KeywordLabeler interface to enforce abstraction.
func NewKeywordLabeler(config *ai.Config) (ai.KeywordLabeler, error) {
	return newKeywordLabeler(config)
}

// Keywords asks the model for topic keywords describing the given titles.
// Transport failures are returned as errors; a response that does not
// contain a parseable JSON array degrades to an empty keyword list.
func (l *KeywordLabeler) Keywords(ctx context.Context, titles []string) ([]string, error) {
	if len(titles) == 0 {
		return []string{}, nil
	}

	prompt := buildKeywordPrompt(titles)
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := l.client.GenerateContent(ctx, content, llms.WithTemperature(0.3))
	if err != nil {
		l.logger.Error("failed to generate keywords", "titles", len(titles), "err", err)
		return nil, err
	}

	if len(response.Choices) < 1 {
		l.logger.Debug("no choices returned from model")
		return []string{}, nil
	}

	keywords := extractJSONArray(response.Choices[0].Content)
	if len(keywords) == 0 {
		l.logger.Warn("could not parse keyword array from model response",
			"titles", len(titles))
	}

	l.logger.Debug("extracted keywords", "count", len(keywords))
	return keywords, nil
}
