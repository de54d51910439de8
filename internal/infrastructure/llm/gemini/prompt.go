package gemini

// Prompt builders are pure: the same notes always produce the same string.

const scopePromptHeader = `You are an expert insurance adjuster and Xactimate estimator.
Analyze the damage description and generate a comprehensive list of Xactimate line items.

You handle ALL trades including: Roofing, Drywall, Painting, Flooring, Siding, Mitigation, Framing, Electrical, and Plumbing.
`

const scopePromptRules = `
Rules:
1. Use standard Xactimate codes (e.g., RFG 300, DRY 1/2, PNT P, FCC AV).
2. Always include a 10-15% waste allowance where appropriate (e.g., flooring, roofing, siding).
3. If dimensions are given (e.g. "12x12 room"), calculate the square footage for the quantity.
4. Output strictly valid JSON.

Code knowledge base:
- 3-Tab Shingles -> category "Roofing", xactCode "RFG 240", unit "SQ"
- Laminated/Architectural Shingles -> category "Roofing", xactCode "RFG 300", unit "SQ" (default when shingle type is unspecified)
- Turtle Vent -> category "Roofing", xactCode "RFG VENTT", unit "EA"
- Ridge Vent -> category "Roofing", xactCode "RFG VENTR", unit "LF"
- Drip Edge -> category "Roofing", xactCode "RFG DRIP", unit "LF"
- Vinyl Siding -> category "Siding", xactCode "SDG SIDE", unit "SQ"
- Hardie/Fiber Cement Siding -> category "Siding", xactCode "SDG FCC", unit "SQ"
- House Wrap / Tyvek -> category "Siding", xactCode "SDG WRAP", unit "SQ"

Output format (JSON array of objects):
[
  {
    "category": "Drywall",
    "xactCode": "DRY 1/2",
    "description": "Hang and tape 1/2\" drywall",
    "quantity": 320,
    "unit": "SF"
  }
]

Do not include markdown formatting like ` + "```json" + `. Just the raw JSON array.`

// BuildScopePrompt embeds the damage notes into the full estimating
// instruction used by the authenticated workflow.
func BuildScopePrompt(notes string) string {
	return scopePromptHeader + `
Input Description: "` + notes + `"
` + scopePromptRules
}

// BuildDemoPrompt is the shorter demo variant with the same output contract.
func BuildDemoPrompt(notes string) string {
	return `You are an expert insurance adjuster and Xactimate estimator.
Analyze the damage description and generate a list of Xactimate line items.

Input Description: "` + notes + `"

Rules:
1. Use standard Xactimate codes (e.g., RFG 300, DRY 1/2).
2. Always include a 10-15% waste allowance where appropriate.
3. If dimensions are given, calculate quantities from them.
4. Output strictly a valid JSON array.

Output format:
[
  { "category": "Drywall", "xactCode": "DRY 1/2", "description": "...", "quantity": 0, "unit": "SF" }
]
Do not use markdown formatting. Just the raw JSON array.`
}
