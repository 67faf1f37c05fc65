package googleEmbedding

import (
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func buildContents(texts []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(texts))

	for _, text := range texts {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		})
	}
	return contentsToSend
}

// logRateLimited surfaces quota exhaustion distinctly; the generic retry
// in embedding.Batcher handles the actual backoff.
func logRateLimited(err error) {
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		logger.Warn("Rate limit hit", "error", err)
	}
}
