package domain

// KeyKind ボタンの種類
type KeyKind string

const (
	KeyDigit    KeyKind = "digit"
	KeyOperator KeyKind = "operator"
	KeyFunction KeyKind = "function"
	KeyClear    KeyKind = "clear"
	KeyEquals   KeyKind = "equals"
)

const (
	// ClearLabel 全消去ボタン
	ClearLabel = "C"
	// EqualsLabel 計算ボタン
	EqualsLabel = "="
)

// Key 電卓のボタン1つ
type Key struct {
	Label string  `json:"label"`
	Kind  KeyKind `json:"kind"`
}

var keypad = []Key{
	{"7", KeyDigit}, {"8", KeyDigit}, {"9", KeyDigit}, {"/", KeyOperator},
	{"4", KeyDigit}, {"5", KeyDigit}, {"6", KeyDigit}, {"*", KeyOperator},
	{"1", KeyDigit}, {"2", KeyDigit}, {"3", KeyDigit}, {"-", KeyOperator},
	{"0", KeyDigit}, {".", KeyDigit}, {"^", KeyOperator}, {"+", KeyOperator},
	{"(", KeyOperator}, {")", KeyOperator}, {"sqrt(", KeyFunction}, {"log(", KeyFunction},
	{"ln(", KeyFunction}, {"sin(", KeyFunction}, {"cos(", KeyFunction}, {"tan(", KeyFunction},
	{"exp(", KeyFunction}, {ClearLabel, KeyClear}, {EqualsLabel, KeyEquals},
}

// Keypad 4列で並べるボタン一覧を返す
func Keypad() []Key {
	keys := make([]Key, len(keypad))
	copy(keys, keypad)
	return keys
}
