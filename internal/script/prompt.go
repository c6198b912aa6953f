package script

import "fmt"

// BuildPrompt assembles the narration prompt: persona, the attributed
// source material, and structural requirements tuned for text-to-speech
// delivery.
func BuildPrompt(corpusText, topic, windowDescription string, targetWords int) string {
	return fmt.Sprintf(`You are a professional podcast narrator creating an audio essay about %s in venture capital.

SOURCE MATERIAL:
The following is a collection of blog posts from prominent venture capitalists over the past %s:

%s

REQUIREMENTS:
1. Synthesize the key themes, trends, and sentiment about %s across all sources
2. Use a conversational, lecture-style narrative voice (NOT bullet points or lists)
3. Attribute specific ideas to their sources naturally (e.g., "As Fred Wilson noted...")
4. Target %d words (approximately 12-15 minutes when spoken)
5. Structure:
   - Intro (30 seconds): Set the context and topic
   - Main themes (10-12 minutes): Discuss 3-5 key themes with evidence from sources
   - Conclusion (90 seconds): Synthesize insights and forward-looking perspective
6. Avoid:
   - Bullet points or numbered lists
   - Meta-commentary about the podcast itself (don't say "in this podcast" or "welcome listeners")
   - Overly promotional language
   - Repetitive phrasing

OUTPUT:
Write a complete podcast script ready for text-to-speech conversion. The script should flow naturally as spoken word.
Start directly with the content - no title, headers, or formatting markers.
`, topic, windowDescription, corpusText, topic, targetWords)
}
