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

// Package breed provides the cat breed lookup the emotion agent can consult
// when a breed's usual expression might be misread as an emotion.
package breed

import (
	"fmt"
	"strings"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
)

const ToolName = "get_cat_breed_info"

const (
	siameseInfo = "Siamese cats are known for being very vocal and often display an intense, 'sassy' expression which can be mistaken for anger or demand. They are highly social."
	ragdollInfo = "Ragdolls are known for their relaxed and floppy posture, often appearing more docile or 'relaxed' than other breeds when handled."
)

// known is checked in order; the first fragment contained in the input wins.
var known = []struct {
	fragment string
	info     string
}{
	{"siamese", siameseInfo},
	{"ragdoll", ragdollInfo},
}

// Lookup returns descriptive information about the breed mentioned in the
// free-text input. Matching is case-insensitive substring containment, so
// "my Siamese mix" matches. Unknown breeds get a fixed not-found sentence
// quoting the input as given.
func Lookup(breed string) string {
	lower := strings.ToLower(breed)
	for _, k := range known {
		if strings.Contains(lower, k.fragment) {
			return k.info
		}
	}
	return fmt.Sprintf("Information for breed '%s' not found. No specific breed traits to consider.", breed)
}

type lookupArgs struct {
	Breed string `json:"breed" jsonschema:"The cat breed to look up, e.g. Siamese or Ragdoll."`
}

type lookupResult struct {
	Info string `json:"info"`
}

func lookup(_ tool.Context, args lookupArgs) (lookupResult, error) {
	return lookupResult{Info: Lookup(args.Breed)}, nil
}

// NewTool exposes Lookup to an agent as a function tool.
func NewTool() (tool.Tool, error) {
	return functiontool.New(
		functiontool.Config{
			Name:        ToolName,
			Description: "Looks up descriptive information about a specific cat breed. Use it when the cat's breed is relevant to reading its emotion.",
		},
		lookup,
	)
}
