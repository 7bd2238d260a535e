package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/debate-tab/internal/domain/entity"
	"github.com/yourusername/debate-tab/internal/domain/repository"
	"github.com/yourusername/debate-tab/internal/metrics"
	apperrors "github.com/yourusername/debate-tab/internal/pkg/errors"
	"github.com/yourusername/debate-tab/internal/service/tabulation"
)

// tabulationCacheKey: ключ кеша сводной таблицы; версия меняется вместе с форматом
const tabulationCacheKey = "tabulation:v1"

// Форматы экспорта
const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

// StageTab: рейтинг команд одного этапа
type StageTab struct {
	Number      int                   `json:"number"`
	Name        string                `json:"name"`
	Preliminary bool                  `json:"preliminary"`
	Rounds      []int                 `json:"rounds"`
	Standings   []tabulation.Standing `json:"standings"`
}

// SpeakerStanding: строка рейтинга спикеров
type SpeakerStanding struct {
	Position      int     `json:"position"`
	ParticipantID uint    `json:"participant_id"`
	Name          string  `json:"name"`
	TeamID        uint    `json:"team_id"`
	TeamName      string  `json:"team_name"`
	Total         float64 `json:"total"`
	Average       float64 `json:"average"`
	Scores        int     `json:"scores"`
}

// TabulationView: сводная таблица турнира
type TabulationView struct {
	Stages      []StageTab        `json:"stages"`
	Speakers    []SpeakerStanding `json:"speakers"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// ExportFile: готовый к отдаче файл
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TabulationService строит сводную таблицу и экспорт
type TabulationService struct {
	plan      tabulation.Plan
	roundRepo repository.RoundRepository
	teamRepo  repository.TeamRepository
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	metrics   *metrics.Recorder
	loader    resultsLoader
}

// NewTabulationService создает сервис сводной таблицы. cacheRepo может быть nil.
func NewTabulationService(
	plan tabulation.Plan,
	roundRepo repository.RoundRepository,
	assignmentRepo repository.AssignmentRepository,
	scoreRepo repository.ScoreRepository,
	teamRepo repository.TeamRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	recorder *metrics.Recorder,
) *TabulationService {
	return &TabulationService{
		plan:      plan,
		roundRepo: roundRepo,
		teamRepo:  teamRepo,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		metrics:   recorder,
		loader: resultsLoader{
			assignmentRepo: assignmentRepo,
			scoreRepo:      scoreRepo,
			teamRepo:       teamRepo,
		},
	}
}

// Tabulation возвращает рейтинги этапов и спикеров; результат кешируется в Redis
func (s *TabulationService) Tabulation(ctx context.Context) (*TabulationView, error) {
	if s.cacheRepo != nil {
		var cached TabulationView
		err := s.cacheRepo.GetJSON(ctx, tabulationCacheKey, &cached)
		if err == nil {
			s.metrics.TabulationCache(true)
			return &cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[TabulationService] Ошибка чтения кеша: %v", err)
		}
		s.metrics.TabulationCache(false)
	}

	view, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil && s.cacheTTL > 0 {
		if err := s.cacheRepo.SetJSON(ctx, tabulationCacheKey, view, s.cacheTTL); err != nil {
			log.Printf("[TabulationService] Ошибка записи кеша: %v", err)
		}
	}
	return view, nil
}

func (s *TabulationService) build(ctx context.Context) (*TabulationView, error) {
	rounds, err := s.roundRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}

	var (
		inputs           []tabulation.RoundInput
		participantTeams map[uint]uint
		teams            []entity.Team
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inputs, participantTeams, err = s.loader.load(gCtx, rounds)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load teams: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byNumber := make(map[int]tabulation.RoundInput, len(inputs))
	for _, in := range inputs {
		byNumber[in.Round.Number] = in
	}

	view := &TabulationView{GeneratedAt: time.Now().UTC()}

	var prelim []tabulation.RoundInput
	prelimNumbers := []int{}
	for n := 1; n <= s.plan.PreliminaryRounds; n++ {
		if in, ok := byNumber[n]; ok {
			prelim = append(prelim, in)
			prelimNumbers = append(prelimNumbers, n)
		}
	}
	view.Stages = append(view.Stages, StageTab{
		Number:      0,
		Name:        "Preliminary",
		Preliminary: true,
		Rounds:      prelimNumbers,
		Standings:   tabulation.BuildStandings(s.plan, prelim, participantTeams),
	})
	for _, stage := range s.plan.Stages {
		in, ok := byNumber[stage.Number]
		if !ok {
			continue
		}
		view.Stages = append(view.Stages, StageTab{
			Number:    stage.Number,
			Name:      stage.Name,
			Rounds:    []int{stage.Number},
			Standings: tabulation.BuildStandings(s.plan, []tabulation.RoundInput{in}, participantTeams),
		})
	}

	view.Speakers = speakerTab(inputs, teams)
	return view, nil
}

// speakerTab суммирует индивидуальные оценки по спикерам
func speakerTab(inputs []tabulation.RoundInput, teams []entity.Team) []SpeakerStanding {
	rows := make(map[uint]*SpeakerStanding)
	for _, t := range teams {
		for _, p := range t.Participants {
			rows[p.ID] = &SpeakerStanding{ParticipantID: p.ID, Name: p.Name, TeamID: t.ID, TeamName: t.Name}
		}
	}
	for _, in := range inputs {
		for _, sc := range in.Scores {
			if sc.Type != entity.ScoreTypeIndividual || sc.ParticipantID == nil {
				continue
			}
			row, ok := rows[*sc.ParticipantID]
			if !ok {
				continue
			}
			row.Total += sc.Value
			row.Scores++
		}
	}

	out := make([]SpeakerStanding, 0, len(rows))
	for _, row := range rows {
		if row.Scores > 0 {
			row.Average = row.Total / float64(row.Scores)
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// Export выгружает сводную таблицу в CSV или XLSX
func (s *TabulationService) Export(ctx context.Context, format string) (*ExportFile, error) {
	view, err := s.Tabulation(ctx)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("tabulation_%s", view.GeneratedAt.Format("20060102_150405"))
	switch format {
	case ExportCSV, "":
		data, err := exportCSV(view)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: filename + ".csv", ContentType: "text/csv; charset=utf-8", Data: data}, nil
	case ExportXLSX:
		data, err := exportXLSX(view)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Filename:    filename + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidation, format)
	}
}

var (
	teamHeaders    = []string{"Stage", "Position", "Team", "Points", "Total score", "Debates", "Firsts"}
	speakerHeaders = []string{"Position", "Speaker", "Team", "Total", "Average", "Scores"}
)

func teamRow(tab StageTab, st tabulation.Standing) []string {
	return []string{
		tab.Name,
		strconv.Itoa(st.Position),
		sanitizeForExcel(st.TeamName),
		strconv.Itoa(st.Points),
		strconv.FormatFloat(st.TotalScore, 'f', 2, 64),
		strconv.Itoa(st.Debates),
		strconv.Itoa(st.Firsts),
	}
}

func speakerRow(sp SpeakerStanding) []string {
	return []string{
		strconv.Itoa(sp.Position),
		sanitizeForExcel(sp.Name),
		sanitizeForExcel(sp.TeamName),
		strconv.FormatFloat(sp.Total, 'f', 2, 64),
		strconv.FormatFloat(sp.Average, 'f', 2, 64),
		strconv.Itoa(sp.Scores),
	}
}

// exportCSV пишет рейтинг команд и, через пустую строку, рейтинг спикеров
func exportCSV(view *TabulationView) ([]byte, error) {
	var buf bytes.Buffer
	// BOM для корректного открытия UTF-8 в Excel
	buf.WriteString("\xEF\xBB\xBF")
	w := csv.NewWriter(&buf)

	w.Write(teamHeaders)
	for _, tab := range view.Stages {
		for _, st := range tab.Standings {
			w.Write(teamRow(tab, st))
		}
	}
	w.Write(nil)
	w.Write(speakerHeaders)
	for _, sp := range view.Speakers {
		w.Write(speakerRow(sp))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// exportXLSX пишет два листа: команды и спикеры
func exportXLSX(view *TabulationView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const teamsSheet, speakersSheet = "Teams", "Speakers"
	if err := f.SetSheetName("Sheet1", teamsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(speakersSheet); err != nil {
		return nil, err
	}

	if err := writeSheet(f, teamsSheet, teamHeaders, func(emit func([]string) error) error {
		for _, tab := range view.Stages {
			for _, st := range tab.Standings {
				if err := emit(teamRow(tab, st)); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if err := writeSheet(f, speakersSheet, speakerHeaders, func(emit func([]string) error) error {
		for _, sp := range view.Speakers {
			if err := emit(speakerRow(sp)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows func(emit func([]string) error) error) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer for %s: %w", sheet, err)
	}
	rowNum := 1
	emit := func(values []string) error {
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		rowNum++
		return sw.SetRow(cell, row)
	}
	if err := emit(headers); err != nil {
		return err
	}
	if err := rows(emit); err != nil {
		return err
	}
	return sw.Flush()
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// invalidateTabulation сбрасывает кеш сводной таблицы после изменения результатов
func invalidateTabulation(ctx context.Context, cache repository.CacheRepository) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, tabulationCacheKey); err != nil {
		log.Printf("[TabulationService] Не удалось сбросить кеш сводной таблицы: %v", err)
	}
}
