package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"
)

// CrisisResponse is the pre-authored message returned on any critical match.
// It is fixed content reviewed under the clinical safety process; never
// generated, never varied per user.
const CrisisResponse = `I'm really concerned about what you've shared. Please reach out for immediate support:

- If you are in immediate danger, call 911 (or your local emergency number) now.
- Suicide & Crisis Lifeline: call or text 988, available 24/7.
- Crisis Text Line: text HOME to 741741.

You don't have to go through this alone. Your care team has been notified and someone will check in with you. If you can, please also contact a trusted person near you right now.`

// SafeFallbackResponse replaces any content that failed cross-validation.
// The caller is never shown output the validators disagreed on.
const SafeFallbackResponse = `I wasn't able to verify a safe answer to that question right now. Rather than risk giving you conflicting guidance, I'd recommend checking directly with your care team. You can reach them through the contact page of this app.`

// ValidationCaveat is appended when the validators agree on safety but differ
// on details.
const ValidationCaveat = `Please note: parts of this answer could not be fully cross-checked. Treat it as general guidance and confirm specifics with your care team.`

// GenericFailureMessage is the non-technical apology for upstream or parse
// failures. Internal detail is logged, never returned.
const GenericFailureMessage = "Sorry, something went wrong while preparing your answer. Please try again in a moment."

// SupervisorSystemPrompt frames every generative call. The user content it
// accompanies has always passed redaction first.
const SupervisorSystemPrompt = `You are a careful health-support assistant working within a regulated care program.

Rules you must follow:
1. Give practical, supportive guidance grounded in generally accepted health advice.
2. Never diagnose, never prescribe, and never advise changing medication, dosage, diet plans, or exercise plans without telling the user to confirm with their care team.
3. If the question is outside everyday self-care, say so and point the user to their clinician.
4. Placeholders like [EMAIL_1] or [PHONE_1] mark removed personal details; do not ask about them or try to reconstruct them.
5. Keep answers short, concrete, and free of technical or internal jargon.`

// SelfScoreAnalysisPrompt requests the strict JSON analysis document for the
// most recent self-score tuple. Verbs: diet, exercise, medication (1-10).
const SelfScoreAnalysisPrompt = `You are reviewing a patient's self-reported daily health scores, each on a 1-10 scale (10 is best).

Today's scores: diet %d, exercise %d, medication adherence %d.

Respond with ONLY a JSON object, no prose and no markdown, in exactly this shape:
{
  "summary": "one or two sentence overall picture",
  "dietObservation": "one sentence about the diet score",
  "exerciseObservation": "one sentence about the exercise score",
  "medicationObservation": "one sentence about the medication score",
  "recommendations": ["up to three short, practical suggestions"],
  "recognition": "one sentence of encouragement if any score is 8 or above, otherwise null"
}`
