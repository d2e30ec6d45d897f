package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/matching"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/repository"
	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"
)

type report struct {
	Results map[string][]domain.MatchResult `json:"results"`
	Issues  []string                        `json:"issues"`
}

func main() {
	fixturePath := flag.String("fixture", "", "archivo JSON de escenarios (por defecto el embebido)")
	topN := flag.Int("top", 10, "tamano de la shortlist")
	asJSON := flag.Bool("json", false, "imprime el reporte como JSON")
	verbose := flag.Bool("v", false, "loguea cada corrida")
	flag.Parse()

	_ = godotenv.Load()

	raw := defaultFixture
	if *fixturePath != "" {
		b, err := os.ReadFile(*fixturePath)
		if err != nil {
			log.Fatal(err)
		}
		raw = b
	}

	store, fx, err := loadFixture(raw)
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	ctx := context.Background()
	criteriaSvc := service.NewCriteriaService(store.Criteria(), store.Forms(), logger)
	if err := criteriaSvc.Validate(ctx, service.ValidateRequest{PipelineID: fx.Pipeline.PipelineID}); err != nil {
		log.Fatalf("criteria rejected: %v", err)
	}

	rep, err := runChecksWithLogger(ctx, store, fx, *topN, logger)
	if err != nil {
		log.Fatal(err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			log.Fatal(err)
		}
	} else {
		printCategories(fx)
		printReport(fx, rep)
	}
	if len(rep.Issues) > 0 {
		os.Exit(1)
	}
}

func runChecks(ctx context.Context, store *repository.MemoryStore, fx fixture, topN int) (report, error) {
	return runChecksWithLogger(ctx, store, fx, topN, zap.NewNop())
}

// runChecksWithLogger corre el matching para cada postulacion de founders del
// fixture y valida los invariantes de cada resultado.
func runChecksWithLogger(ctx context.Context, store *repository.MemoryStore, fx fixture, topN int, logger *zap.Logger) (report, error) {
	svc := service.NewMatchService(
		store.Criteria(),
		store.Forms(),
		store.Submissions(),
		store.Personality(),
		store.Matches(),
		logger,
		service.MatchOptions{TopN: topN, Workers: 4},
	)

	subjects, err := store.Submissions().FindByForm(ctx, fx.Pipeline.SubjectFormID)
	if err != nil {
		return report{}, err
	}
	opposites, err := store.Submissions().FindByForm(ctx, fx.Pipeline.OppositeFormID)
	if err != nil {
		return report{}, err
	}
	kinds := make(map[string]domain.EntityKind, len(subjects)+len(opposites))
	for _, s := range append(append([]domain.Submission(nil), subjects...), opposites...) {
		kinds[s.ID] = s.EntityKind
	}

	results, err := svc.RescoreBatch(ctx, fx.Pipeline.PipelineID, subjects, domain.EntityOpposite)
	if err != nil {
		return report{}, err
	}

	rep := report{Results: results}
	for _, sub := range subjects {
		for _, issue := range checkResults(sub, results[sub.ID], topN, kinds) {
			rep.Issues = append(rep.Issues, sub.ID+": "+issue)
		}
	}
	return rep, nil
}

// printCategories muestra el arbol de categorias del fixture con sus codigos de familia.
func printCategories(fx fixture) {
	forms := make(map[string]domain.Form, len(fx.Forms))
	for _, f := range fx.Forms {
		forms[f.ID] = f
	}
	registry := matching.NewCategoryRegistry()
	for _, rs := range fx.Submissions {
		form := forms[rs.FormID]
		data, err := domain.DecodeSubmissionData(form, rs.Data)
		if err != nil {
			continue
		}
		for _, key := range form.CategoryKeys() {
			for _, name := range data[key].Strings() {
				if !registry.Has(name) {
					registry.AddCategory(name, registry.Neighbors(name))
				}
			}
		}
	}

	fmt.Printf("%s==== Categorias ====%s\n", colorCyan, colorReset)
	codes := registry.OrderedCodes()
	for i, name := range registry.Names() {
		fmt.Printf("  %-4s %s\n", codes[i], name)
	}
	fmt.Println()
}

func printReport(fx fixture, rep report) {
	names := make(map[string]string)
	for _, rs := range fx.Submissions {
		for _, key := range []string{"company", "fund", "name"} {
			if v, ok := rs.Data[key].(string); ok {
				names[rs.ID] = v
				break
			}
		}
	}

	for _, rs := range fx.Submissions {
		results, ok := rep.Results[rs.ID]
		if !ok {
			continue
		}
		fmt.Printf("%s[%s]%s %d matches\n", colorCyan, label(names, rs.ID), colorReset, len(results))
		for _, r := range results {
			personality := "   -  "
			if r.PersonalityScore != nil {
				personality = fmt.Sprintf("%6.2f", *r.PersonalityScore)
			}
			fmt.Printf("  %-20s total %6.2f | campos %6.2f | personalidad %s | rasgos %.3f | categoria %.3f\n",
				label(names, r.OppositeSubmissionID), r.TotalScore, r.FieldScore, personality, r.TraitDistance, r.CategoryScore)
		}
		fmt.Println()
	}

	if len(rep.Issues) == 0 {
		fmt.Printf("%sOK%s sin violaciones\n", colorGreen, colorReset)
		return
	}
	fmt.Printf("%s%d violaciones%s\n  %s\n", colorRed, len(rep.Issues), colorReset, strings.Join(rep.Issues, "\n  "))
}

func label(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}
