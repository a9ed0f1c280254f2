package core

import "fmt"

// ParseError 输入文件缺失、格式错误或列数不一致。整个处理过程随之终止
type ParseError struct {
	File   string
	Line   int // 从1开始，0表示未知
	Column string
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "parse error"
	if e.File != "" {
		msg += " in " + e.File
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %s)", e.Column)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShapeError 拼接时中间表的行数或行顺序不一致
type ShapeError struct {
	Op    string
	Left  int
	Right int
	Msg   string
}

func (e *ShapeError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: shape mismatch: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: shape mismatch: %d rows vs %d rows", e.Op, e.Left, e.Right)
}
