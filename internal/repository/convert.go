package repository

import (
	"strings"

	"github.com/mrlokans/lullabies/internal/entities"
	"github.com/mrlokans/lullabies/internal/language"
	"github.com/mrlokans/lullabies/internal/remote"
)

// idMap resolves the internal ids used by translation records to the
// document ids of their parents. It is built from one fetch and never
// reused across passes. Parents without a document id are never stored, so
// they are left out and their translations are skipped.
type idMap map[int]string

func lullabyIDs(rows []remote.Lullaby) idMap {
	ids := make(idMap, len(rows))
	for _, l := range rows {
		if l.DocumentID == "" {
			continue
		}
		ids[l.ID] = l.DocumentID
	}
	return ids
}

func storyIDs(rows []remote.Story) idMap {
	ids := make(idMap, len(rows))
	for _, s := range rows {
		if s.DocumentID == "" {
			continue
		}
		ids[s.ID] = s.DocumentID
	}
	return ids
}

func toLullabies(rows []remote.Lullaby) []entities.Lullaby {
	out := make([]entities.Lullaby, 0, len(rows))
	for _, r := range rows {
		if r.DocumentID == "" {
			continue
		}
		out = append(out, entities.Lullaby{
			DocumentID: r.DocumentID,
			InternalID: r.ID,
			Name:       r.Name,
			AudioPath:  r.AudioPath,
			FileSize:   r.FileSize,
			ImagePath:  r.ImagePath,
			Duration:   r.Duration,
			Popularity: r.Popularity,
			IsFree:     r.IsFree,
		})
	}
	return out
}

func toStories(rows []remote.Story) []entities.Story {
	out := make([]entities.Story, 0, len(rows))
	for _, r := range rows {
		if r.DocumentID == "" {
			continue
		}
		out = append(out, entities.Story{
			DocumentID:   r.DocumentID,
			InternalID:   r.ID,
			Name:         r.Name,
			Description:  r.Description,
			AudioPath:    r.AudioPath,
			ImagePath:    r.ImagePath,
			ReadingTime:  r.ReadingTime,
			ListenTimeMs: r.ListenTimeMs,
			Popularity:   r.Popularity,
			IsFree:       r.IsFree,
		})
	}
	return out
}

// mapRows converts translation rows whose parent is in ids. It returns the
// converted rows and how many were skipped, either for lack of a parent or
// because convert rejected them.
func mapRows[R, E any](rows []R, ids idMap, parent func(R) int, convert func(R, string) (E, bool)) ([]E, int) {
	out := make([]E, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		documentID, ok := ids[parent(r)]
		if !ok {
			skipped++
			continue
		}
		e, ok := convert(r, documentID)
		if !ok {
			skipped++
			continue
		}
		out = append(out, e)
	}
	return out, skipped
}

// languageCode stores codes the way the language signal hands them out, so
// "pt-BR" is matched by a reader whose language is "pt".
func languageCode(code string) (string, bool) {
	normalized, err := language.Normalize(strings.TrimSpace(code))
	if err != nil {
		return "", false
	}
	return normalized, true
}

func toLullabyTranslations(rows []remote.LullabyTranslation, ids idMap) ([]entities.LullabyTranslation, int) {
	return mapRows(rows, ids,
		func(r remote.LullabyTranslation) int { return r.LullabyID },
		func(r remote.LullabyTranslation, documentID string) (entities.LullabyTranslation, bool) {
			code, ok := languageCode(r.LanguageCode)
			return entities.LullabyTranslation{
				LullabyDocumentID: documentID,
				LanguageCode:      code,
				Name:              r.Name,
			}, ok
		})
}

func toStoryNameTranslations(rows []remote.StoryNameTranslation, ids idMap) ([]entities.StoryNameTranslation, int) {
	return mapRows(rows, ids,
		func(r remote.StoryNameTranslation) int { return r.StoryID },
		func(r remote.StoryNameTranslation, documentID string) (entities.StoryNameTranslation, bool) {
			code, ok := languageCode(r.LanguageCode)
			return entities.StoryNameTranslation{
				StoryDocumentID: documentID,
				LanguageCode:    code,
				Name:            r.Name,
				AudioPath:       r.AudioPath,
			}, ok
		})
}

func toStoryDescriptionTranslations(rows []remote.StoryDescriptionTranslation, ids idMap) ([]entities.StoryDescriptionTranslation, int) {
	return mapRows(rows, ids,
		func(r remote.StoryDescriptionTranslation) int { return r.StoryID },
		func(r remote.StoryDescriptionTranslation, documentID string) (entities.StoryDescriptionTranslation, bool) {
			code, ok := languageCode(r.LanguageCode)
			return entities.StoryDescriptionTranslation{
				StoryDocumentID: documentID,
				LanguageCode:    code,
				Description:     r.Description,
			}, ok
		})
}

func toStoryAudioLanguages(rows []remote.StoryAudioLanguage, ids idMap) ([]entities.StoryAudioLanguage, int) {
	return mapRows(rows, ids,
		func(r remote.StoryAudioLanguage) int { return r.StoryID },
		func(r remote.StoryAudioLanguage, documentID string) (entities.StoryAudioLanguage, bool) {
			codes := make([]string, 0, len(r.LanguageCodes))
			for _, c := range r.LanguageCodes {
				if code, ok := languageCode(c); ok {
					codes = append(codes, code)
				}
			}
			return entities.StoryAudioLanguage{
				StoryDocumentID: documentID,
				LanguageCodes:   strings.Join(codes, ","),
			}, true
		})
}
