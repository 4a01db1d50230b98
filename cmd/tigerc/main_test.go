package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNormalizeFlags(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"single dash debug flag", []string{"-dtr", "empty"}, []string{"--dtr", "empty"}},
		{"already double dash", []string{"--dcanon", "empty"}, []string{"--dcanon", "empty"}},
		{"unrelated single dash left alone", []string{"-v", "empty"}, []string{"-v", "empty"}},
		{"no flags", []string{"empty"}, []string{"empty"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeFlags(tc.in)
			if strings.Join(got, " ") != strings.Join(tc.want, " ") {
				t.Errorf("normalizeFlags(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestListProgramsWithNoArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "arithmetic") {
		t.Errorf("expected program list to mention \"arithmetic\", got:\n%s", out.String())
	}
}

func TestDoFullUnknownProgram(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"nonexistent"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error for an unknown program name")
	}
}

func TestDoFullArithmetic(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"arithmetic"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "main:") {
		t.Errorf("expected output to contain a main label, got:\n%s", out.String())
	}
}

func TestDoRegallocReportsSpillRounds(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--dra", "register-pressure"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "spill round(s)") {
		t.Errorf("expected -dra output to report spill rounds, got:\n%s", out.String())
	}
}

func TestDoCanonicalizeReportsStatementCounts(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"--dcanon", "if-else"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "canonical statements") {
		t.Errorf("expected -dcanon output to report a statement count, got:\n%s", out.String())
	}
}
