package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// NodeKind — тип узла графа. Совпадает с полем "type" редактора.
type NodeKind string

const (
	// KindLeadSource — источник лидов (список контактов).
	KindLeadSource NodeKind = "leadSource"

	// KindWait — ожидание: N дней или до конкретной даты/времени.
	KindWait NodeKind = "wait"

	// KindColdEmail — холодное письмо.
	KindColdEmail NodeKind = "coldEmail"
)

// IsValid возвращает true для известных типов узлов.
func (k NodeKind) IsValid() bool {
	switch k {
	case KindLeadSource, KindWait, KindColdEmail:
		return true
	default:
		return false
	}
}

// WaitType — режим узла ожидания.
type WaitType string

const (
	// WaitTypeDays — задержка на DelayDays × 24 часа.
	WaitTypeDays WaitType = "days"

	// WaitTypeSpecific — ожидание до SpecificDate + SpecificTime.
	WaitTypeSpecific WaitType = "specific"
)

// Форматы полей specificDate / specificTime (как у input type="date"/"time").
const (
	DateLayout        = "2006-01-02"
	TimeLayout        = "15:04"
	TimeLayoutSeconds = "15:04:05"
)

// Node — узел графа кампании.
type Node struct {
	// ID — уникальный идентификатор узла (например, "node-3").
	ID string `json:"id"`

	// Kind — тип узла.
	Kind NodeKind `json:"type"`

	// Position — координаты на холсте. Ядром не используются.
	Position Position `json:"position"`

	// Data — payload узла. Поля, не относящиеся к Kind, игнорируются.
	Data NodeData `json:"data"`
}

// Position — координаты узла на холсте.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData — payload узла в плоском виде, как его сохраняет редактор.
type NodeData struct {
	Label string `json:"label,omitempty"`

	// LeadSource
	SelectedList string `json:"selectedList,omitempty"`
	Source       string `json:"source,omitempty"`

	// Wait
	WaitType     WaitType  `json:"waitType,omitempty"`
	Delay        DelayDays `json:"delay,omitempty"`
	SpecificDate string    `json:"specificDate,omitempty"`
	SpecificTime string    `json:"specificTime,omitempty"`

	// ColdEmail
	RecipientEmail string `json:"recipientEmail,omitempty"`
	Subject        string `json:"subject,omitempty"`
	EmailContent   string `json:"emailContent,omitempty"`
	Body           string `json:"body,omitempty"`
}

// EffectiveWaitType возвращает режим ожидания; пустой режим читается как days.
func (d NodeData) EffectiveWaitType() WaitType {
	if d.WaitType == "" {
		return WaitTypeDays
	}
	return d.WaitType
}

// DelayDays возвращает количество дней ожидания (минимум 1).
func (d NodeData) DelayDays() int {
	if d.Delay < 1 {
		return 1
	}
	return int(d.Delay)
}

// SpecificInstant собирает момент из SpecificDate и SpecificTime в зоне loc.
// Возвращает false, если хотя бы одно поле пустое или не парсится.
func (d NodeData) SpecificInstant(loc *time.Location) (time.Time, bool) {
	date := strings.TrimSpace(d.SpecificDate)
	clock := strings.TrimSpace(d.SpecificTime)
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range []string{TimeLayout, TimeLayoutSeconds} {
		t, err := time.ParseInLocation(DateLayout+"T"+layout, date+"T"+clock, loc)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EmailBody возвращает тело письма: body, иначе emailContent.
func (d NodeData) EmailBody() string {
	if d.Body != "" {
		return d.Body
	}
	return d.EmailContent
}

// DelayDays — количество дней в узле ожидания.
//
// Редактор присылает число или строку ("3"), поэтому JSON
// принимается в обоих видах. Нечисловые значения читаются как 0,
// а NodeData.DelayDays поднимает их до 1.
type DelayDays int

// UnmarshalJSON принимает число, числовую строку или null.
func (d *DelayDays) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DelayDays(leadingInt(s))
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		*d = 0
		return nil
	}
	switch {
	case f >= float64(math.MaxInt):
		// Конверсия float → int за пределами диапазона не определена
		*d = DelayDays(math.MaxInt)
	case f < 1:
		*d = 0
	default:
		*d = DelayDays(math.Trunc(f))
	}
	return nil
}

// leadingInt разбирает ведущее целое из строки ("3 days" → 3).
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		// Atoi насыщает до MaxInt/MinInt
		return n
	}
	if err != nil {
		return 0
	}
	return n
}
