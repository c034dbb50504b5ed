package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/clausewise/internal/model"
)

// SystemPrompt is sent with every clause analysis
const SystemPrompt = "You are a contract analyst. You read one legal clause at a time and answer with a single JSON object and nothing else."

// BuildClausePrompt constructs the strict-JSON analysis prompt for one clause
func BuildClausePrompt(clause string) string {
	escaped := strings.ReplaceAll(clause, `"`, `\"`)
	escaped = strings.Join(strings.Fields(escaped), " ")

	return fmt.Sprintf(`TASK: Analyze the legal clause below and output JSON only.

CLAUSE (%d words):
%s

ANALYSIS RULES:
1. Read the whole clause.
2. Identify the parties, obligations, penalties, restrictions and liability.
3. Classify risk:
   HIGH = contains ANY of: unlimited liability, indemnification, non-compete, unilateral termination, waiver of rights, irrevocable terms, sole discretion, uncapped financial penalties, hold harmless, perpetual obligations, at-will termination, forfeiture of rights
   MEDIUM = contains ANY of: confidentiality requirements, breach definitions, termination conditions, IP assignment, arbitration, obligations with defined limits, proprietary information, trade secrets, dispute resolution
   LOW = contains ONLY: definitions, notices, effective dates, mutual standard terms, administrative procedures, commencement dates
4. Simplify to plain English with no legal jargon and no HTML.
5. Justify the risk by quoting specific words from the clause.

OUTPUT FORMAT (strict JSON, no other text):
{
"original": "%s",
"simplified": "plain English explanation",
"risk": "HIGH or MEDIUM or LOW",
"reason": "specific term or phrase that triggered this classification"
}

Rules:
- Output ONLY the JSON object above.
- No preamble such as "Here is" and no markdown or code fences.
- If uncertain, use MEDIUM.
- Never leave "simplified" empty.

JSON output:`, model.WordCount(clause), escaped, escaped)
}
