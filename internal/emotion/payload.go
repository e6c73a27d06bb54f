// Copyright 2025 Google LLC
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

package emotion

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultPrompt is used by callers that accept an image without a question.
const DefaultPrompt = "What emotion is this cat showing? Explain the visual cues."

// NewPayload builds the user message for one analysis: the prompt as a text
// part followed by the decoded image as an inline data part.
//
// base64Image may be a data URL ("data:image/png;base64,..."); its media
// type is used when mimeType is empty.
func NewPayload(base64Image, mimeType, prompt string) (*genai.Content, error) {
	encoded := strings.TrimSpace(base64Image)
	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found {
			return nil, errors.New("malformed data URL")
		}
		if mt, _, _ := strings.Cut(header, ";"); mimeType == "" {
			mimeType = mt
		}
		encoded = data
	}
	if encoded == "" {
		return nil, errors.New("empty image data")
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	return genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(data, mimeType),
	}, genai.RoleUser), nil
}

// decodeBase64 accepts padded and unpadded standard encodings.
func decodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}
