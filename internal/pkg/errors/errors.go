package errors

import (
	"errors"
	"fmt"
)

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется, когда токен отсутствует или невалиден.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у вызывающего недостаточно прав для действия
	// (например, судья отправляет оценки за чужую комнату).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния: повторная отправка оценок,
	// параллельная генерация того же этапа, завершение уже завершённого раунда.
	ErrConflict = errors.New("resource state conflict")

	// ErrPrecondition используется, когда генерация этапа невозможна в текущем состоянии турнира.
	ErrPrecondition = errors.New("precondition failed")
)

// Виды ошибок генерации этапа
const (
	KindStageExists       = "stage_exists"
	KindInsufficientTeams = "insufficient_teams"
	KindInsufficientRooms = "insufficient_rooms"
	KindSourceIncomplete  = "source_incomplete"
)

// GenerationError описывает, почему этап не может быть сгенерирован.
// Required/Available позволяют UI объяснить, чего не хватает ("12 из 16").
// Для source_incomplete это число комнат раунда Source и число оценённых из них.
type GenerationError struct {
	Kind      string
	Stage     int
	Source    int
	Required  int
	Available int
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case KindStageExists:
		return fmt.Sprintf("stage %d already exists", e.Stage)
	case KindInsufficientTeams:
		return fmt.Sprintf("not enough teams for stage %d: only %d of %d required teams qualified", e.Stage, e.Available, e.Required)
	case KindInsufficientRooms:
		return fmt.Sprintf("not enough rooms for stage %d: %d available, %d required", e.Stage, e.Available, e.Required)
	case KindSourceIncomplete:
		if e.Required == 0 {
			return fmt.Sprintf("stage %d cannot be generated: round %d has no rooms yet", e.Stage, e.Source)
		}
		return fmt.Sprintf("stage %d cannot be generated: only %d of %d rooms of round %d are scored", e.Stage, e.Available, e.Required, e.Source)
	default:
		return fmt.Sprintf("stage %d cannot be generated: %s", e.Stage, e.Kind)
	}
}

// Unwrap позволяет проверять errors.Is(err, ErrPrecondition)
func (e *GenerationError) Unwrap() error {
	return ErrPrecondition
}

// NewStageExists создаёт ошибку "этап уже существует"
func NewStageExists(stage int) *GenerationError {
	return &GenerationError{Kind: KindStageExists, Stage: stage}
}

// NewInsufficientTeams создаёт ошибку нехватки команд
func NewInsufficientTeams(stage, required, available int) *GenerationError {
	return &GenerationError{Kind: KindInsufficientTeams, Stage: stage, Required: required, Available: available}
}

// NewInsufficientRooms создаёт ошибку нехватки комнат
func NewInsufficientRooms(stage, required, available int) *GenerationError {
	return &GenerationError{Kind: KindInsufficientRooms, Stage: stage, Required: required, Available: available}
}

// NewSourceIncomplete создаёт ошибку "исходный раунд оценён не полностью".
// rooms = 0 означает, что раунд ещё не создан или в нём нет комнат.
func NewSourceIncomplete(stage, source, rooms, scored int) *GenerationError {
	return &GenerationError{Kind: KindSourceIncomplete, Stage: stage, Source: source, Required: rooms, Available: scored}
}

// AsGenerationError извлекает GenerationError из цепочки ошибок
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}
