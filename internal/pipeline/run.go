// Package pipeline drives the document flow: extract raw fields, enrich and
// anonymize them into a case record, classify the record against persisted
// version history, and persist it transactionally. Failures are isolated per
// document; only configuration problems abort a batch.
package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/opendefense/casepipe/internal/caserecord"
	"github.com/opendefense/casepipe/internal/config"
	"github.com/opendefense/casepipe/internal/db"
	"github.com/opendefense/casepipe/internal/errors"
	"github.com/opendefense/casepipe/internal/extract"
	"github.com/opendefense/casepipe/internal/process"
	"github.com/opendefense/casepipe/internal/taxonomy"
)

// Deps carries the shared dependencies for pipeline operations.
type Deps struct {
	DB       *sql.DB
	Config   *config.Config
	Logger   *zap.Logger
	Registry extract.Registry
}

// RunInput configures one batch run.
type RunInput struct {
	// Jurisdiction selects the extractor and the data subdirectory.
	Jurisdiction string

	// InputDir overrides the default <DataDir>/<jurisdiction>/case_html
	// source directory when non-empty.
	InputDir string
}

// DocError records one isolated per-document failure.
type DocError struct {
	DocID string `json:"doc_id"`
	Error string `json:"error"`
}

// RunOutput summarizes a batch run.
type RunOutput struct {
	RunID        string     `json:"run_id"`
	Jurisdiction string     `json:"jurisdiction"`
	Processed    int        `json:"processed"`
	NewCases     int        `json:"new_cases"`
	NewVersions  int        `json:"new_versions"`
	Duplicates   int        `json:"duplicates"`
	Failed       int        `json:"failed"`
	Errors       []DocError `json:"errors,omitempty"`
}

// runEnv is the per-run reference data, loaded once before any document.
type runEnv struct {
	extractor  extract.Extractor
	taxonomy   taxonomy.Map
	motions    []string
	rawDir     string
	cleanedDir string
}

// Run processes every HTML document under the jurisdiction's input directory.
// Reference data problems (taxonomy, motions, directories) and an unknown
// jurisdiction abort the run before any document is touched; past that point
// each document fails alone and the batch continues. The context is checked
// between documents, so cancellation stops the batch at a document boundary
// with already-persisted documents intact.
func Run(ctx context.Context, deps Deps, in RunInput) (*RunOutput, error) {
	if in.Jurisdiction == "" {
		return nil, errors.NewInvalidRequest("jurisdiction is required")
	}

	env, err := prepare(deps, in)
	if err != nil {
		return nil, err
	}

	inputDir := in.InputDir
	if inputDir == "" {
		inputDir = filepath.Join(deps.Config.JurisdictionDir(in.Jurisdiction), "case_html")
	}
	docs, err := listDocuments(inputDir)
	if err != nil {
		return nil, err
	}

	out := &RunOutput{
		RunID:        ulid.Make().String(),
		Jurisdiction: in.Jurisdiction,
	}
	logger := deps.Logger.With(
		zap.String("run_id", out.RunID),
		zap.String("jurisdiction", in.Jurisdiction),
	)
	logger.Info("batch run started", zap.Int("documents", len(docs)))

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch run cancelled", zap.Int("processed", out.Processed))
			return out, err
		}

		docID := strings.TrimSuffix(filepath.Base(doc), filepath.Ext(doc))
		docLogger := logger.With(zap.String("doc", caserecord.Digest(docID)))

		outcome, err := processDocument(ctx, deps, env, in.Jurisdiction, docID, doc, docLogger)
		if err != nil {
			out.Failed++
			out.Errors = append(out.Errors, DocError{DocID: docID, Error: err.Error()})
			docLogger.Error("document failed", zap.Error(err))
			continue
		}
		out.Processed++
		switch outcome {
		case db.OutcomeDuplicate:
			out.Duplicates++
		case db.OutcomeNew:
			out.NewCases++
		case db.OutcomeNewVersion:
			out.NewVersions++
		}
		docLogger.Info("document processed", zap.String("outcome", outcome.String()))
	}

	logger.Info("batch run finished",
		zap.Int("processed", out.Processed),
		zap.Int("new_cases", out.NewCases),
		zap.Int("new_versions", out.NewVersions),
		zap.Int("duplicates", out.Duplicates),
		zap.Int("failed", out.Failed),
	)
	return out, nil
}

// ParseOneInput configures a single-document parse.
type ParseOneInput struct {
	Jurisdiction string
	Path         string
}

// ParseOne extracts and enriches a single document without touching the
// store or the data layout. Used for extractor development and spot checks.
func ParseOne(deps Deps, in ParseOneInput) (*caserecord.CaseRecord, error) {
	if in.Jurisdiction == "" {
		return nil, errors.NewInvalidRequest("jurisdiction is required")
	}
	if in.Path == "" {
		return nil, errors.NewInvalidRequest("document path is required")
	}

	env, err := prepare(deps, RunInput{Jurisdiction: in.Jurisdiction})
	if err != nil {
		return nil, err
	}

	docID := strings.TrimSuffix(filepath.Base(in.Path), filepath.Ext(in.Path))
	html, err := os.ReadFile(in.Path)
	if err != nil {
		return nil, errors.NewNotFound(in.Path)
	}

	raw, err := env.extractor.Extract(deps.Logger, extract.Input{DocID: docID, HTML: html})
	if err != nil {
		return nil, err
	}
	return assemble(in.Jurisdiction, docID, raw, env, deps.Logger), nil
}

// prepare loads the per-run reference data and resolves output directories.
func prepare(deps Deps, in RunInput) (*runEnv, error) {
	extractor, err := deps.Registry.Lookup(in.Jurisdiction)
	if err != nil {
		return nil, err
	}

	tax, err := taxonomy.Load(deps.Config.TaxonomyPath)
	if err != nil {
		return nil, err
	}
	motions, err := taxonomy.LoadMotions(deps.Config.MotionsPath)
	if err != nil {
		return nil, err
	}

	jurisdictionDir := deps.Config.JurisdictionDir(in.Jurisdiction)
	env := &runEnv{
		extractor:  extractor,
		taxonomy:   tax,
		motions:    motions,
		rawDir:     filepath.Join(jurisdictionDir, "case_json"),
		cleanedDir: filepath.Join(jurisdictionDir, "case_json_cleaned"),
	}
	for _, dir := range []string{env.rawDir, env.cleanedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewConfiguration("output directory unavailable", err)
		}
	}
	return env, nil
}

// listDocuments returns the HTML files under dir in a stable order.
func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewConfiguration("input directory unreadable", err)
	}
	var docs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".html") {
			docs = append(docs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(docs)
	return docs, nil
}

// processDocument runs one document through extraction, enrichment, version
// classification, and persistence. Duplicates short-circuit before any file
// or database write beyond the raw extraction snapshot.
func processDocument(ctx context.Context, deps Deps, env *runEnv, jurisdiction, docID, path string, logger *zap.Logger) (db.VersionOutcome, error) {
	html, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.NewExtraction(docID, "document unreadable: "+err.Error())
	}

	raw, err := env.extractor.Extract(logger, extract.Input{DocID: docID, HTML: html})
	if err != nil {
		return 0, err
	}

	if err := writeJSON(filepath.Join(env.rawDir, docID+".json"), raw); err != nil {
		return 0, err
	}

	fingerprint := caserecord.Fingerprint(raw.Body)
	decision, err := db.ClassifyVersion(ctx, deps.DB, fingerprint, raw.CauseNumber)
	if err != nil {
		return 0, errors.NewPersistence(docID, err)
	}
	if decision.Outcome == db.OutcomeDuplicate {
		return db.OutcomeDuplicate, nil
	}

	rec := assemble(jurisdiction, docID, raw, env, logger)
	rec.Parse.Version = decision.Version

	if err := writeJSON(filepath.Join(env.cleanedDir, docID+".json"), anonymize(rec)); err != nil {
		return 0, err
	}

	if _, err := db.PersistCase(ctx, deps.DB, rec); err != nil {
		if errors.Is(err, errors.ErrDuplicateContent) {
			return db.OutcomeDuplicate, nil
		}
		return 0, err
	}
	return decision.Outcome, nil
}

// assemble builds the full case record from the raw field set.
func assemble(jurisdiction, docID string, raw *extract.RawCase, env *runEnv, logger *zap.Logger) *caserecord.CaseRecord {
	charges, earliest := process.Charges(raw.Charges, env.taxonomy, logger)
	dispositions := process.Dispositions(raw.Dispositions, logger)
	events := process.Events(raw.EventRows, logger)

	motions := process.FindGoodMotions(caserecord.EventRowsText(raw.EventRows), env.motions)
	dismissed := process.CountDismissed(dispositions)

	rec := &caserecord.CaseRecord{
		Jurisdiction:       jurisdiction,
		CauseNumber:        raw.CauseNumber,
		CaseName:           raw.CaseName,
		CaseType:           raw.CaseType,
		DateFiled:          raw.DateFiled,
		Location:           raw.Location,
		EarliestChargeDate: earliest,
		GoodMotions:        motions,
		HasRepresentation:  len(motions) > 0,
		DismissedCount:     &dismissed,
		Defendant:          raw.Defendant,
		DefenseAttorney:    raw.DefenseAttorney,
		State:              raw.State,
		Charges:            charges,
		Dispositions:       dispositions,
		Events:             events,
		RelatedCases:       raw.RelatedCases,
		Parse: caserecord.ParseMetadata{
			ParsedAt:        time.Now().UTC(),
			Fingerprint:     caserecord.Fingerprint(raw.Body),
			DocID:           docID,
			CauseNumberHash: caserecord.HashCauseNumber(raw.CauseNumber),
		},
	}

	if top := process.FindTopCharge(dispositions, charges); top != nil {
		rec.TopChargeName = &top.Name
		rec.TopChargeLevel = top.Level
	}
	if a := rec.DefenseAttorney; a != nil {
		a.Hash = caserecord.HashAttorney(a.Name, a.Phone)
	}
	return rec
}

// anonymize returns a copy of the record with direct identifiers removed.
// The cause number and attorney identity survive only as digests; the case
// name goes because it names the defendant.
func anonymize(rec *caserecord.CaseRecord) *caserecord.CaseRecord {
	clean := *rec
	clean.CauseNumber = nil
	clean.CaseName = nil
	clean.Defendant = nil
	if a := rec.DefenseAttorney; a != nil {
		clean.DefenseAttorney = &caserecord.DefenseAttorney{
			AppointedRetained: a.AppointedRetained,
			Hash:              a.Hash,
		}
	}
	return &clean
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
