package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offlineConfig writes a config with no question URLs, so only the built-in
// pool is used.
func offlineConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "magistr.yaml")
	body := "questions:\n  urls: []\ndemo:\n  workers: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newTestRoot(t *testing.T, stdin string, out *bytes.Buffer, args ...string) *cobra.Command {
	t.Helper()
	t.Setenv("MAGISTR_TELEGRAM_TOKEN", "")
	root := newRootCmd(strings.NewReader(stdin), out)
	root.SetArgs(append([]string{"--config", offlineConfig(t), "--db", ":memory:"}, args...))
	return root
}

func run(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newTestRoot(t, stdin, &out, args...).ExecuteContext(ctx)
	return out.String(), err
}

func TestAnalyzeJSON(t *testing.T) {
	out, err := run(t, context.Background(), "", "analyze", "Помогите,", "срочно", "болит", "спина")
	require.NoError(t, err)

	var got analysis
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Помогите, срочно болит спина", got.Question)
	assert.Equal(t, got.Question, got.Diagnosis.Text)
	assert.NotEmpty(t, got.Diagnosis.Summary)
	assert.NotEmpty(t, got.Pitch.Name)
	assert.Contains(t, out, "\"question_type\"")
}

func TestAnalyzeReadsStdin(t *testing.T) {
	out, err := run(t, context.Background(), "  Как найти работу?\n", "analyze", "--text")
	require.NoError(t, err)
	assert.Contains(t, out, "ПОЛНЫЙ АНАЛИЗ МАГИСТРА")
	assert.Contains(t, out, "❓ Вопрос: Как найти работу?")
}

func TestAnalyzeWithoutQuestion(t *testing.T) {
	_, err := run(t, context.Background(), "   ", "analyze")
	assert.EqualError(t, err, "no question given")
}

func TestCLIDemo(t *testing.T) {
	out, err := run(t, context.Background(), "", "cli")
	require.NoError(t, err)
	assert.Contains(t, out, "🔍 Ищу случайный вопрос...")
	assert.Contains(t, out, "📊 Обработано вопросов: 1")
}

func TestInteractiveIsDefault(t *testing.T) {
	out, err := run(t, context.Background(), "1\n2\n0\n")
	require.NoError(t, err)
	assert.Contains(t, out, "интерактивный режим")
	assert.Contains(t, out, "👋 До свидания!")
}

func TestInteractiveHandsOverWithoutToken(t *testing.T) {
	_, err := run(t, context.Background(), "6\n", "interactive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAGISTR_TELEGRAM_TOKEN")
}

func TestBotsNeedToken(t *testing.T) {
	for _, cmd := range []string{"bot", "game"} {
		t.Run(cmd, func(t *testing.T) {
			_, err := run(t, context.Background(), "", cmd)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "MAGISTR_TELEGRAM_TOKEN")
		})
	}
}

func TestDemo(t *testing.T) {
	out, err := run(t, context.Background(), "", "demo", "-n", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Анализирую 12 вопросов")
	assert.Contains(t, out, "🎯 Обработано вопросов: 10/12")
	assert.Contains(t, out, "ДЕМОНСТРАЦИЯ 12 РОФЛО-ВОПРОСОВ ЗАВЕРШЕНА")
}

func TestServeStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	root := newTestRoot(t, "", &bytes.Buffer{}, "serve", "--addr", "127.0.0.1:0")
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nope: 1\n"), 0o600))

	root := newRootCmd(strings.NewReader(""), &bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "analyze", "x"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}
