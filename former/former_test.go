package former_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lemon-mint/jsonformer/former"
	"github.com/lemon-mint/jsonformer/internal/lmtest"
	"github.com/lemon-mint/jsonformer/lm"
	"github.com/lemon-mint/jsonformer/schema"
	"github.com/lemon-mint/jsonformer/value"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func person() *schema.Object {
	return schema.NewObject(
		schema.Prop("name", schema.NewString()),
		schema.Prop("age", schema.NewNumber()),
	)
}

func run(t *testing.T, s schema.Node, replies []lmtest.Reply, opts ...former.Option) (*value.Object, *lmtest.Model, error) {
	t.Helper()
	tok := lmtest.NewTokenizer()
	model := lmtest.NewModel(tok, replies...)
	f, err := former.New(model, tok, s, "Generate a person", opts...)
	require.NoError(t, err)
	out, err := f.Call(context.Background())
	return out, model, err
}

func encode(t *testing.T, v value.Value) string {
	t.Helper()
	b, err := value.Append(nil, v)
	require.NoError(t, err)
	return string(b)
}

func TestCallPerson(t *testing.T) {
	out, model, err := run(t, person(), []lmtest.Reply{
		lmtest.Text(`Alice"`),
		lmtest.Text("30"),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Alice","age":30}`, encode(t, out))
	assert.Equal(t, 0, model.Remaining())

	calls := model.Calls()
	require.Len(t, calls, 2)

	assert.True(t, strings.HasPrefix(calls[0].Prompt, "Generate a person\nOutput result in the following JSON schema format:\n"))
	assert.True(t, strings.HasSuffix(calls[0].Prompt, `Result: {"name":"`), calls[0].Prompt)
	assert.Equal(t, 10, *calls[0].Config.MaxNewTokens)
	assert.Empty(t, calls[0].Config.Stop)

	assert.True(t, strings.HasSuffix(calls[1].Prompt, `Result: {"name":"Alice","age":`), calls[1].Prompt)
	assert.Equal(t, 6, *calls[1].Config.MaxNewTokens)
	assert.Equal(t, 1, *calls[1].Config.NumReturnSequences)
	assert.Equal(t, lmtest.NewTokenizer().EOSTokenID(), *calls[1].Config.PadTokenID)
	assert.InDelta(t, 1.0, *calls[1].Config.Temperature, 1e-6)
	assert.Nil(t, calls[1].Config.Seed)
}

func TestCallKeepsSchemaOrder(t *testing.T) {
	s := schema.NewObject(
		schema.Prop("z", schema.NewNumber()),
		schema.Prop("a", schema.NewNumber()),
		schema.Prop("m", schema.NewNumber()),
	)
	out, _, err := run(t, s, []lmtest.Reply{
		lmtest.Text("1"), lmtest.Text("2"), lmtest.Text("3"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, out.Keys())

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":2,"m":3}`, string(b))
}

func TestNumberRetry(t *testing.T) {
	s := schema.NewObject(schema.Prop("age", schema.NewNumber()))
	out, model, err := run(t, s, []lmtest.Reply{
		lmtest.Text("abc"),
		lmtest.Text("-"),
		lmtest.Text(" 42."),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"age":42}`, encode(t, out))

	calls := model.Calls()
	require.Len(t, calls, 3)
	assert.InDelta(t, 1.0, *calls[0].Config.Temperature, 1e-6)
	assert.InDelta(t, 1.3, *calls[1].Config.Temperature, 1e-6)
	assert.InDelta(t, 1.69, *calls[2].Config.Temperature, 1e-5)
	assert.Equal(t, calls[0].Prompt, calls[2].Prompt)
}

func TestNumberFailure(t *testing.T) {
	s := schema.NewObject(schema.Prop("age", schema.NewNumber()))
	_, model, err := run(t, s, []lmtest.Reply{
		lmtest.Text("a"), lmtest.Text("b"), lmtest.Text("c"), lmtest.Text("d"),
		lmtest.Text("5"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, former.ErrNumber)

	var failure *former.GenerationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 4, failure.Attempts)
	assert.Equal(t, "d", failure.Last)
	assert.Equal(t, "$.age", failure.Path.String())
	assert.Equal(t, 1, model.Remaining())
}

func TestNumberRetriesOption(t *testing.T) {
	s := schema.NewObject(schema.Prop("age", schema.NewNumber()))
	_, model, err := run(t, s, []lmtest.Reply{lmtest.Text("x")}, former.WithNumberRetries(0))
	assert.ErrorIs(t, err, former.ErrNumber)
	assert.Len(t, model.Calls(), 1)
}

func TestBoolean(t *testing.T) {
	tok := lmtest.NewTokenizer()
	tests := []struct {
		name   string
		logits lm.Logits
		want   bool
	}{
		{"true wins", tok.Bool(2, 1), true},
		{"false wins", tok.Bool(1, 2), false},
		{"tie", tok.Bool(1, 1), false},
		{"both absent", lm.Sparse{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := schema.NewObject(schema.Prop("ok", schema.NewBoolean()))
			out, model, err := run(t, s, []lmtest.Reply{lmtest.Scores(tt.logits)})
			require.NoError(t, err)

			v, ok := out.Get("ok")
			require.True(t, ok)
			assert.Equal(t, value.Bool(tt.want), v)

			calls := model.Calls()
			require.Len(t, calls, 1)
			assert.True(t, calls[0].Forward)
			assert.True(t, strings.HasSuffix(calls[0].Prompt, `{"ok":`))
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{`Alice"`, "Alice"},
		{`  Bob  ", "age": 3`, "Bob"},
		{`Alic`, "Alic"},
		{` spaced `, " spaced "},
		{`"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			s := schema.NewObject(schema.Prop("name", schema.NewString()))
			out, _, err := run(t, s, []lmtest.Reply{lmtest.Text(tt.reply)})
			require.NoError(t, err)

			v, _ := out.Get("name")
			assert.Equal(t, value.String(tt.want), v)
		})
	}
}

func TestArray(t *testing.T) {
	tok := lmtest.NewTokenizer()
	s := schema.NewObject(schema.Prop("xs", schema.NewArray(schema.NewNumber())))
	out, model, err := run(t, s, []lmtest.Reply{
		lmtest.Text("1"),
		lmtest.Scores(tok.Continue()),
		lmtest.Text("2"),
		lmtest.Scores(tok.Stop()),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"xs":[1,2]}`, encode(t, out))

	calls := model.Calls()
	require.Len(t, calls, 4)
	assert.True(t, strings.HasSuffix(calls[0].Prompt, `{"xs":[`))
	assert.True(t, strings.HasSuffix(calls[1].Prompt, `{"xs":[1`))
	assert.True(t, strings.HasSuffix(calls[2].Prompt, `{"xs":[1,`))
	assert.True(t, strings.HasSuffix(calls[3].Prompt, `{"xs":[1,2`))
}

func TestArrayContinuationRanking(t *testing.T) {
	tok := lmtest.NewTokenizer()
	tests := []struct {
		name   string
		logits lm.Logits
		want   string
	}{
		{"comma first", tok.Ranked(",\n", "]"), `[1,2]`},
		{"bracket first", tok.Ranked(" ]", ","), `[1]`},
		{"no separator", tok.Neutral(), `[1]`},
		{"separator below neutral", tok.Ranked("true", "false", ","), `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replies := []lmtest.Reply{lmtest.Text("1"), lmtest.Scores(tt.logits)}
			if strings.Contains(tt.want, ",") {
				replies = append(replies, lmtest.Text("2"), lmtest.Scores(tok.Stop()))
			}

			s := schema.NewObject(schema.Prop("xs", schema.NewArray(schema.NewNumber())))
			out, model, err := run(t, s, replies)
			require.NoError(t, err)

			v, _ := out.Get("xs")
			assert.Equal(t, tt.want, encode(t, v))
			assert.Equal(t, 0, model.Remaining())
		})
	}
}

func TestArrayTopK(t *testing.T) {
	tok := lmtest.NewTokenizer()
	s := schema.NewObject(schema.Prop("xs", schema.NewArray(schema.NewNumber())))

	cfg := former.DefaultConfig()
	cfg.ContinuationTopK = 1
	out, _, err := run(t, s, []lmtest.Reply{
		lmtest.Text("1"),
		lmtest.Scores(tok.Ranked("true", ",")),
	}, former.WithConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, `{"xs":[1]}`, encode(t, out))
}

func TestArrayCap(t *testing.T) {
	tok := lmtest.NewTokenizer()
	s := schema.NewObject(schema.Prop("xs", schema.NewArray(schema.NewNumber())))
	out, model, err := run(t, s, []lmtest.Reply{
		lmtest.Text("1"),
		lmtest.Scores(tok.Continue()),
		lmtest.Text("2"),
	}, former.WithMaxArrayLength(2))
	require.NoError(t, err)
	assert.Equal(t, `{"xs":[1,2]}`, encode(t, out))
	assert.Len(t, model.Calls(), 3)
}

func TestArrayZeroCap(t *testing.T) {
	s := schema.NewObject(
		schema.Prop("xs", schema.NewArray(schema.NewNumber())),
		schema.Prop("n", schema.NewNumber()),
	)
	out, model, err := run(t, s, []lmtest.Reply{lmtest.Text("7")}, former.WithMaxArrayLength(0))
	require.NoError(t, err)
	assert.Equal(t, `{"xs":[],"n":7}`, encode(t, out))
	assert.True(t, strings.HasSuffix(model.Calls()[0].Prompt, `{"xs":[],"n":`))
}

func TestNested(t *testing.T) {
	tok := lmtest.NewTokenizer()
	s := schema.NewObject(
		schema.Prop("owner", schema.NewObject(
			schema.Prop("name", schema.NewString()),
			schema.Prop("admin", schema.NewBoolean()),
		)),
		schema.Prop("pets", schema.NewArray(schema.NewObject(
			schema.Prop("kind", schema.NewString()),
		))),
		schema.Prop("empty", schema.NewObject()),
	)

	out, model, err := run(t, s, []lmtest.Reply{
		lmtest.Text(`Bo"`),
		lmtest.Scores(tok.Bool(3, 1)),
		lmtest.Text(`cat"`),
		lmtest.Scores(tok.Continue()),
		lmtest.Text(`dog"`),
		lmtest.Scores(tok.Stop()),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"owner":{"name":"Bo","admin":true},"pets":[{"kind":"cat"},{"kind":"dog"}],"empty":{}}`, encode(t, out))

	calls := model.Calls()
	require.Len(t, calls, 6)
	assert.True(t, strings.HasSuffix(calls[1].Prompt, `{"owner":{"name":"Bo","admin":`))
	assert.True(t, strings.HasSuffix(calls[2].Prompt, `"pets":[{"kind":"`))
	assert.True(t, strings.HasSuffix(calls[3].Prompt, `"pets":[{"kind":"cat"}`))
	assert.True(t, strings.HasSuffix(calls[4].Prompt, `"pets":[{"kind":"cat"},{"kind":"`))
}

func TestNewConfigurationErrors(t *testing.T) {
	tok := lmtest.NewTokenizer()
	model := lmtest.NewModel(tok)

	tests := []struct {
		name string
		s    schema.Node
	}{
		{"array root", schema.NewArray(schema.NewNumber())},
		{"string root", schema.NewString()},
		{"nil root", nil},
		{"no properties", schema.NewObject()},
		{"nil items", schema.NewObject(schema.Prop("xs", &schema.Array{}))},
		{"nil string", schema.NewObject(schema.Prop("a", (*schema.String)(nil)))},
		{"nil number", schema.NewObject(schema.Prop("xs", schema.NewArray((*schema.Number)(nil))))},
		{"nil boolean", schema.NewObject(schema.Prop("ok", (*schema.Boolean)(nil)))},
		{"nil nested object", schema.NewObject(schema.Prop("o", (*schema.Object)(nil)))},
		{"duplicate property", schema.NewObject(
			schema.Prop("a", schema.NewString()),
			schema.Prop("a", schema.NewNumber()),
		)},
		{"nested duplicate property", schema.NewObject(
			schema.Prop("o", schema.NewObject(
				schema.Prop("b", schema.NewBoolean()),
				schema.Prop("b", schema.NewBoolean()),
			)),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := former.New(model, tok, tt.s, "p")
			assert.ErrorIs(t, err, former.ErrConfiguration)

			var cerr *former.ConfigurationError
			assert.ErrorAs(t, err, &cerr)
		})
	}
	assert.Empty(t, model.Calls())
}

func TestNewInvalidOptions(t *testing.T) {
	tok := lmtest.NewTokenizer()
	model := lmtest.NewModel(tok)

	for _, opt := range []former.Option{
		former.WithMaxArrayLength(-1),
		former.WithMaxNumberTokens(0),
		former.WithMaxStringTokenLength(0),
		former.WithTemperature(-1),
		former.WithNumberRetries(-1),
		former.WithLogger(nil),
		former.WithDebugWriter(nil),
	} {
		_, err := former.New(model, tok, person(), "p", opt)
		assert.ErrorIs(t, err, former.ErrInvalidOption)
	}

	_, err := former.New(nil, tok, person(), "p")
	assert.ErrorIs(t, err, former.ErrInvalidOption)

	_, err = former.New(model, tok, person(), "p", former.WithTemplate("{progress} trailing"))
	assert.Error(t, err)
}

func TestModelErrors(t *testing.T) {
	_, _, err := run(t, person(), []lmtest.Reply{lmtest.Fail(lm.ErrRateLimit)})
	assert.ErrorIs(t, err, lm.ErrRateLimit)
}

func TestContextCanceled(t *testing.T) {
	tok := lmtest.NewTokenizer()
	model := lmtest.NewModel(tok, lmtest.Text(`A"`), lmtest.Text("1"))
	f, err := former.New(model, tok, person(), "p")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Call(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSeedAndTemperature(t *testing.T) {
	_, model, err := run(t, person(), []lmtest.Reply{
		lmtest.Text(`A"`), lmtest.Text("1"),
	}, former.WithSeed(7), former.WithTemperature(0.5))
	require.NoError(t, err)

	for _, c := range model.Calls() {
		require.NotNil(t, c.Config.Seed)
		assert.Equal(t, 7, *c.Config.Seed)
		assert.InDelta(t, 0.5, *c.Config.Temperature, 1e-6)
	}
}

func TestCustomTemplate(t *testing.T) {
	_, model, err := run(t, person(), []lmtest.Reply{
		lmtest.Text(`A"`), lmtest.Text("1"),
	}, former.WithTemplate("Task: {prompt}\n{progress}"))
	require.NoError(t, err)
	assert.Equal(t, "Task: Generate a person\n{\"name\":\"", model.Calls()[0].Prompt)
}

func TestDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	tok := lmtest.NewTokenizer()
	s := schema.NewObject(
		schema.Prop("name", schema.NewString()),
		schema.Prop("xs", schema.NewArray(schema.NewBoolean())),
	)
	_, _, err := run(t, s, []lmtest.Reply{
		lmtest.Text(`Al"`),
		lmtest.Scores(tok.Bool(1, 0)),
		lmtest.Scores(tok.Stop()),
	}, former.WithDebug(true), former.WithDebugWriter(&buf))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[generate_string]")
	assert.Contains(t, out, "|Al|")
	assert.Contains(t, out, "[generate_boolean]")
	assert.Contains(t, out, "[generate_array]")
}

func TestNoDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := run(t, person(), []lmtest.Reply{
		lmtest.Text(`A"`), lmtest.Text("1"),
	}, former.WithDebugWriter(&buf))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	_, _, err := run(t, person(), []lmtest.Reply{
		lmtest.Text(`A"`), lmtest.Text("1"),
	}, former.WithLogger(zap.New(core)))
	require.NoError(t, err)

	finished := logs.FilterMessage("generation finished").All()
	require.Len(t, finished, 1)
	assert.EqualValues(t, 2, finished[0].ContextMap()["model_calls"])
	assert.NotEmpty(t, finished[0].ContextMap()["session"])
}

func TestPrompt(t *testing.T) {
	tok := lmtest.NewTokenizer()
	f, err := former.New(lmtest.NewModel(tok), tok, person(), "Generate a person")
	require.NoError(t, err)

	partial := value.NewObject()
	partial.Set("name", value.String("Al"))
	p, err := f.Prompt(partial, value.SlotAt(value.Path{value.Key("age")}))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, `Result: {"name":"Al","age":`))
}
