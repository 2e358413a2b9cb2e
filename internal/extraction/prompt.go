package extraction

import (
	"fmt"
)

const systemPrompt = `CRITICAL: You MUST output ONLY valid JSON. Do not include any text before or after the JSON object. Do not wrap it in markdown code blocks. Output the raw JSON object directly.

You are extracting event information from Instagram posts published by small businesses announcing popup events.

Output Format: Your response MUST be ONLY this exact JSON structure with no additional text:
{
  "is_event": true,
  "confidence": 0.0,
  "title": "event title" or null,
  "description": "brief description" or null,
  "start_date": "YYYY-MM-DD" or null,
  "start_time": "HH:MM" or null,
  "end_date": "YYYY-MM-DD" or null,
  "end_time": "HH:MM" or null,
  "location": "address or venue name" or null,
  "suggested_category": "category-slug" or null
}

Rules:
- Set is_event=true only if the caption announces a specific event with a date or time
- confidence reflects how certain you are this is an event AND how complete the information is
- Extract dates relative to the current date if given as "this Saturday", etc.
- If there is no clear event date/time, set is_event=false with low confidence`

// BuildPrompt embeds the caption and tenant context into the user prompt.
func BuildPrompt(caption string, tenant TenantContext) string {
	category := tenant.DefaultCategory
	if category == "" {
		category = "unknown"
	}

	return fmt.Sprintf(`Business context:
- Name: %s
- Default category: %s

Instagram caption:
"%s"

Extract event details if this caption is an event announcement, following the rules and JSON format from your instructions.`, tenant.Name, category, caption)
}
