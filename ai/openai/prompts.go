package openai

// descriptionPrompt instructs the vision model to produce a description
// optimized for embedding-based similarity, not for prose quality.
const descriptionPrompt = `Describe this image in two or three sentences for a similarity search index.

Focus on:
- The main subject and its visual attributes (shape, pose, color palette)
- The setting or background
- The artistic style or medium if apparent

Do not speculate about intent, do not address the reader, and do not include
any preamble such as "This image shows". Start directly with the description.`
