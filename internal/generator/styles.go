package generator

var imageStyles = map[string]string{
	"realistic":  "photorealistic, high quality, detailed, professional photography",
	"artistic":   "artistic style, creative, expressive, beautiful artwork",
	"cartoon":    "cartoon style, animated, colorful, fun, illustration",
	"abstract":   "abstract art, creative interpretation, artistic expression",
	"vintage":    "vintage style, retro, classic, nostalgic aesthetic",
	"futuristic": "futuristic style, sci-fi, modern, high-tech aesthetic",
}

var videoStyles = map[string]string{
	"cinematic":   "cinematic style, dramatic lighting, high quality, professional videography, film-like",
	"documentary": "documentary style, natural lighting, realistic, authentic footage",
	"animated":    "animated style, colorful, smooth motion, cartoon-like animation",
	"artistic":    "artistic style, creative visuals, expressive, beautiful cinematography",
	"vintage":     "vintage style, retro aesthetic, classic film look, nostalgic",
	"modern":      "modern style, sleek visuals, contemporary, high-tech aesthetic",
}

// EnhanceImagePrompt appends the style's descriptors. Unknown styles leave
// the prompt as is.
func EnhanceImagePrompt(prompt, style string) string {
	return enhance(imageStyles, prompt, style)
}

func EnhanceVideoPrompt(prompt, style string) string {
	return enhance(videoStyles, prompt, style)
}

func enhance(table map[string]string, prompt, style string) string {
	suffix, ok := table[style]
	if !ok {
		return prompt
	}
	return prompt + ", " + suffix
}
