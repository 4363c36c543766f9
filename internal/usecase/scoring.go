package usecase

import (
	"sort"

	"edu-recommender/internal/domain"
)

// Blend weights for vector-mode scoring. Popularity is normalized against
// the retrieved set, so the blended score stays within [0,1] for the
// expected embedding space.
const (
	similarityWeight = 0.7
	popularityWeight = 0.3
	viewsWeight      = 0.5
	likesWeight      = 0.5
)

// scoreMatches converts catalog matches into scored candidates. In vector
// mode the similarity signal is blended with set-normalized popularity; in
// keyword mode the popularity value itself is the score, there being no
// similarity signal to blend with.
func scoreMatches(matches []domain.VideoMatch, vectorMode bool) []domain.Candidate {
	maxViews, maxLikes := int64(1), int64(1)
	for _, m := range matches {
		if m.Video.ViewCount > maxViews {
			maxViews = m.Video.ViewCount
		}
		if m.Video.LikeCount > maxLikes {
			maxLikes = m.Video.LikeCount
		}
	}

	candidates := make([]domain.Candidate, 0, len(matches))
	for _, m := range matches {
		v := m.Video
		popularity := viewsWeight*float64(v.ViewCount)/float64(maxViews) +
			likesWeight*float64(v.LikeCount)/float64(maxLikes)

		score := popularity
		if vectorMode {
			score = similarityWeight*m.Similarity + popularityWeight*popularity
		}

		candidates = append(candidates, domain.Candidate{
			VideoID:     v.YoutubeID,
			Title:       v.Title,
			Description: v.Description,
			Thumbnail:   v.Thumbnail,
			Channel:     v.Channel,
			Link:        domain.WatchURL(v.YoutubeID),
			Score:       score,
			Views:       v.ViewCount,
			Likes:       v.LikeCount,
		})
	}
	return candidates
}

// dedupeCandidates drops repeated external IDs, keeping the first (highest
// ranked) occurrence.
func dedupeCandidates(candidates []domain.Candidate) []domain.Candidate {
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if seen[c.VideoID] {
			continue
		}
		seen[c.VideoID] = true
		out = append(out, c)
	}
	return out
}

// sortCandidates orders by score descending. Ties fall back to raw
// popularity (views, then likes) and finally external ID ascending, so
// identical inputs always produce identical output.
func sortCandidates(candidates []domain.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if a.Likes != b.Likes {
			return a.Likes > b.Likes
		}
		return a.VideoID < b.VideoID
	})
}
