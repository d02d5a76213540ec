package questions

// LLM prompt templates. Data only, no logic.

const extractSystem = "You are a helpful assistant that extracts questions from podcast transcripts."

// extractPrompt args: guest context line, transcript chunk.
const extractPrompt = `Given the following podcast transcript segment, extract all questions that were asked to the guest.%s
Skip rhetorical questions and questions the guest asks other people.

Respond with valid JSON only (no markdown, no ` + "`" + `json` + "`" + ` block), an array of objects:
[
  {"question": "The question, cleaned up as a single sentence.", "snippet": "The exact words from the transcript where the question is asked, 5-20 words."}
]
If no questions were asked, return [].

Transcript segment:
%s
`

const cleanSystem = "You are a helpful assistant that cleans and deduplicates podcast questions."

// cleanPrompt args: id-tagged question lines.
const cleanPrompt = `Clean up the following list of podcast questions:
- Remove any duplicate or near-duplicate questions, keeping one of them.
- Correct grammar and formatting.

Each input line is "<id>: <question>". Respond with valid JSON only (no markdown), an array of objects:
[
  {"id": "<id of the question you kept>", "question": "<cleaned question>"}
]

Questions:
%s
`

const bucketSystem = "You are a helpful assistant that categorizes podcast questions."

// bucketPrompt args: bucket name, bucket criterion, max picks, id-tagged question lines.
const bucketPrompt = `From the following list of podcast questions, select the %[3]d best that fall under the bucket: '%[1]s'.
This bucket is defined as: %[2]s.
If there are none, return [].

Each input line is "<id>: <question>". Respond with valid JSON only (no markdown), an array of objects:
[
  {"id": "<id>", "question": "<question text>"}
]

Questions:
%[4]s
`
