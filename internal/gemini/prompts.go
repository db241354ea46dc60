package gemini

import "google.golang.org/genai"

// SystemInstruction fixes the shape and language of a generated entry.
const SystemInstruction = `Provide linguistic details for the given word in JSON format.
1. PRIORITY: If a computer science or cybersecurity definition exists, list it first in all arrays.
2. SYNC: Ensure that the index of each entry in 'meaningKr', 'example', and 'antonymEn' corresponds to the same definition.
3. LENGTH: All three arrays (meaningKr, example, antonymEn) must have the exact same number of elements.
4. LANGUAGE: 'meaningKr' must be in Korean. All other fields must be English.
5. Case: Lowercase the 'name' and 'antonymEn' fields.
6. If the word is misspelled, provide the correct spelling in the 'name' field and provide details of that word.`

// EntryPrompt accepts the word to describe.
const EntryPrompt = "Generate a vocabulary entry for the word: %s"

// ResponseSchema constrains the model to the fields a new word needs.
func ResponseSchema() *genai.Schema {
	stringArray := func() *genai.Schema {
		return &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":      {Type: genai.TypeString},
			"meaningKr": stringArray(),
			"example":   stringArray(),
			"antonymEn": stringArray(),
			"tags":      stringArray(),
		},
		Required: []string{"name", "meaningKr", "example", "antonymEn", "tags"},
	}
}
