// Copyright © 2018 One Concern

package cmd

import (
	"fmt"

	"github.com/stretchr/testify/mock"
)

// ExitMocks records calls to fatal loggers and os.Exit
type ExitMocks struct {
	mock.Mock
	exitStatuses []int
	messages     []string
}

func (m *ExitMocks) Fatalf(format string, v ...interface{}) {
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
	m.exitStatuses = append(m.exitStatuses, 1)
}

func (m *ExitMocks) Fatalln(v ...interface{}) {
	m.messages = append(m.messages, fmt.Sprintln(v...))
	m.exitStatuses = append(m.exitStatuses, 1)
}

func (m *ExitMocks) Exit(code int) {
	m.exitStatuses = append(m.exitStatuses, code)
}

func (m *ExitMocks) fatalCalls() int {
	return len(m.exitStatuses)
}

func NewExitMocks() *ExitMocks {
	return &ExitMocks{
		exitStatuses: make([]int, 0),
	}
}

// https://github.com/stretchr/testify/issues/610
func MakeFatalfMock(m *ExitMocks) func(string, ...interface{}) {
	return func(format string, v ...interface{}) {
		m.Fatalf(format, v...)
	}
}

func MakeFatallnMock(m *ExitMocks) func(...interface{}) {
	return func(v ...interface{}) {
		m.Fatalln(v...)
	}
}

func MakeExitMock(m *ExitMocks) func(int) {
	return func(code int) {
		m.Exit(code)
	}
}
