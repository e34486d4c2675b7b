package summarize

const systemPrompt = `You are summarizing official government circulars for an internal notification email. Be neutral and factual. Never speculate beyond the text you are given.`

const chunkPrompt = `Summarize the following excerpt from a government circular as short neutral bullet points. Cover the subject, any directives, effective dates, obligations, and penalties if mentioned.

Excerpt:
%s`

const combinePrompt = `The following are partial summaries of different parts of one government circular. Combine them into 5-8 bullet points, removing duplicates. Keep every date, obligation, and penalty that appears.

Partial summaries:
%s`
