package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"time"

	"newsbrief/common"
	"newsbrief/dedup"
	"newsbrief/extract"
	"newsbrief/highlights"
	"newsbrief/notify"
	"newsbrief/ragchat"
	"newsbrief/types"

	"github.com/google/uuid"
)

// CategoryExtractor produces articles for a category from its source URLs.
type CategoryExtractor interface {
	ExtractCategory(category string, sources []string) []*types.Article
}

// Pipeline runs the full aggregation cycle: extract, categorize, summarize,
// dedupe, synthesize highlights, and rebuild the chat index. The bloom filter,
// archive, and notifier are optional and skipped when nil.
type Pipeline struct {
	extractor   CategoryExtractor
	clusterer   *dedup.Clusterer
	bloom       *dedup.Bloom
	summarizer  *highlights.Summarizer
	synthesizer *highlights.Synthesizer
	answerer    *ragchat.Answerer
	store       *Store
	notifier    *notify.Notifier

	archive       *common.S3
	archiveBucket string
	archivePrefix string

	sources    map[string][]string
	categories []string
}

// Config wires the pipeline's stages and side channels.
type Config struct {
	Extractor   CategoryExtractor
	Clusterer   *dedup.Clusterer
	Bloom       *dedup.Bloom
	Summarizer  *highlights.Summarizer
	Synthesizer *highlights.Synthesizer
	Answerer    *ragchat.Answerer
	Store       *Store
	Notifier    *notify.Notifier

	Archive       *common.S3
	ArchiveBucket string
	ArchivePrefix string

	Sources    map[string][]string
	Categories []string
}

func New(cfg Config) *Pipeline {
	return &Pipeline{
		extractor:     cfg.Extractor,
		clusterer:     cfg.Clusterer,
		bloom:         cfg.Bloom,
		summarizer:    cfg.Summarizer,
		synthesizer:   cfg.Synthesizer,
		answerer:      cfg.Answerer,
		store:         cfg.Store,
		notifier:      cfg.Notifier,
		archive:       cfg.Archive,
		archiveBucket: cfg.ArchiveBucket,
		archivePrefix: cfg.ArchivePrefix,
		sources:       cfg.Sources,
		categories:    cfg.Categories,
	}
}

// runArchive is the JSON document uploaded for each completed run.
type runArchive struct {
	Result     *types.RunResult  `json:"result"`
	Articles   []*types.Article  `json:"articles"`
	Highlights []types.Highlight `json:"highlights"`
}

// Run executes one aggregation cycle for the given categories (all configured
// categories when empty) and returns the run summary. Failures in optional
// side channels are logged, not fatal.
func (p *Pipeline) Run(ctx context.Context, categories []string) *types.RunResult {
	runID := uuid.NewString()
	if len(categories) == 0 {
		categories = p.categories
	}

	log.Printf("Starting news processing pipeline (run %s)...", runID)

	var all []*types.Article
	for _, category := range categories {
		sources, ok := p.sources[category]
		if !ok {
			log.Printf("Warning: category %s has no configured sources", category)
			continue
		}

		log.Printf("Extracting %s news from %d sources...", category, len(sources))
		articles := p.extractor.ExtractCategory(category, sources)
		log.Printf("Extracted %d articles for %s", len(articles), category)

		articles = p.filterSeen(ctx, articles)

		for _, a := range articles {
			if a.Category == "" {
				a.Category = extract.Categorize(a)
			}
			a.Summary = p.summarizer.Summarize(ctx, a)
		}
		all = append(all, articles...)
	}

	if len(all) == 0 {
		log.Println("No articles extracted from any source")
		return p.finish(ctx, &types.RunResult{
			RunID:       runID,
			Status:      "error",
			Message:     "No articles extracted",
			CompletedAt: time.Now(),
		}, nil)
	}
	log.Printf("Total articles extracted: %d", len(all))

	log.Println("Detecting duplicates...")
	all = p.clusterer.Cluster(all)
	duplicates := 0
	for _, a := range all {
		if a.IsDuplicate {
			duplicates++
		}
	}
	log.Printf("Found %d duplicates, %d unique articles", duplicates, len(all)-duplicates)

	p.store.SaveArticles(all)

	log.Println("Generating highlights...")
	var allHighlights []types.Highlight
	for _, category := range categories {
		hs := p.synthesizer.Synthesize(ctx, all, category)
		log.Printf("Generated %d highlights for %s", len(hs), category)
		allHighlights = append(allHighlights, hs...)
	}
	p.store.SaveHighlights(allHighlights)

	log.Println("Indexing highlights for chat...")
	if err := p.answerer.IndexHighlights(allHighlights); err != nil {
		log.Printf("Warning: failed to index highlights: %v", err)
	}

	result := &types.RunResult{
		RunID:           runID,
		Status:          "success",
		ArticlesCount:   len(all),
		DuplicatesCount: duplicates,
		HighlightsCount: len(allHighlights),
		CompletedAt:     time.Now(),
	}
	log.Printf("Pipeline completed: %d articles, %d highlights", len(all), len(allHighlights))
	return p.finish(ctx, result, &runArchive{Result: result, Articles: all, Highlights: allHighlights})
}

// filterSeen drops articles the bloom filter has already seen and remembers
// the rest. Filter errors fail open.
func (p *Pipeline) filterSeen(ctx context.Context, articles []*types.Article) []*types.Article {
	if p.bloom == nil {
		return articles
	}

	kept := articles[:0]
	for _, a := range articles {
		seen, err := p.bloom.Seen(ctx, a)
		if err != nil {
			log.Printf("Warning: bloom check failed for %s: %v", a.URL, err)
			kept = append(kept, a)
			continue
		}
		if seen {
			continue
		}
		if err := p.bloom.Remember(ctx, a); err != nil {
			log.Printf("Warning: bloom remember failed for %s: %v", a.URL, err)
		}
		kept = append(kept, a)
	}
	if dropped := len(articles) - len(kept); dropped > 0 {
		log.Printf("Bloom filter skipped %d previously seen articles", dropped)
	}
	return kept
}

// finish archives and publishes the run result, then returns it.
func (p *Pipeline) finish(ctx context.Context, result *types.RunResult, archive *runArchive) *types.RunResult {
	if p.archive != nil && archive != nil {
		key := path.Join(p.archivePrefix, fmt.Sprintf("run_%s.json", result.RunID))
		data, err := json.Marshal(archive)
		if err == nil {
			err = p.archive.PutJSON(ctx, p.archiveBucket, key, data)
		}
		if err != nil {
			log.Printf("Warning: failed to archive run %s: %v", result.RunID, err)
		} else {
			log.Printf("Archived run to s3://%s/%s", p.archiveBucket, key)
		}
	}

	if p.notifier != nil {
		if err := p.notifier.PublishRunCompleted(result); err != nil {
			log.Printf("Warning: failed to publish run result: %v", err)
		}
	}
	return result
}
