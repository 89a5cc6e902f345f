package geomap

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"

	"github.com/goliatone/go-mapdirective/internal/identity"
)

var placeholderPattern = regexp.MustCompile(`<div id="(map-[0-9a-f]{8})" style="height: 400px; width: 100%"></div>`)

func convert(t *testing.T, source string, configure func(parser.Context)) (string, parser.Context) {
	t.Helper()
	md := goldmark.New(goldmark.WithExtensions(NewExtension(NewTransformer())))
	pc := parser.NewContext()
	if configure != nil {
		configure(pc)
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf, parser.WithContext(pc)); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	return buf.String(), pc
}

func TestTransformerRewritesAddressDirective(t *testing.T) {
	scheduler := &recordingScheduler{}
	out, pc := convert(t, "$map(Tokyo Tower)\n", func(pc parser.Context) {
		WithScheduler(pc, scheduler)
		WithDocument(pc, "trip.md")
	})

	match := placeholderPattern.FindStringSubmatch(out)
	if match == nil {
		t.Fatalf("expected placeholder markup, got %s", out)
	}
	if strings.Contains(out, "$map") {
		t.Fatalf("expected directive to be replaced, got %s", out)
	}

	if len(scheduler.tasks) != 1 {
		t.Fatalf("expected one scheduled task, got %d", len(scheduler.tasks))
	}
	task := scheduler.tasks[0]
	if task.ContainerID != match[1] || task.Label != "Tokyo Tower" || task.Point != nil {
		t.Fatalf("unexpected task %#v", task)
	}
	if task.Document != "trip.md" {
		t.Fatalf("expected document to be recorded, got %q", task.Document)
	}
	if recorded := TasksFrom(pc); len(recorded) != 1 || recorded[0].ContainerID != task.ContainerID {
		t.Fatalf("expected task on parser context, got %#v", recorded)
	}
}

func TestTransformerUsesExplicitCoordinates(t *testing.T) {
	scheduler := &recordingScheduler{}
	out, _ := convert(t, "$map(latitude=48.8584, longitude=2.2945)\n", func(pc parser.Context) {
		WithScheduler(pc, scheduler)
		WithZoom(pc, 16)
	})

	if !placeholderPattern.MatchString(out) {
		t.Fatalf("expected placeholder markup, got %s", out)
	}
	task := scheduler.tasks[0]
	if task.Point == nil || task.Point.Latitude != "48.8584" || task.Point.Longitude != "2.2945" {
		t.Fatalf("expected explicit point, got %#v", task.Point)
	}
	if task.Label != "latitude" {
		t.Fatalf("expected first key as label, got %q", task.Label)
	}
	if task.Zoom != 16 {
		t.Fatalf("expected zoom override, got %d", task.Zoom)
	}
}

func TestTransformerSingleCoordinateFallsBackToAddress(t *testing.T) {
	scheduler := &recordingScheduler{}
	convert(t, "$map(latitude=48.8584)\n", func(pc parser.Context) { WithScheduler(pc, scheduler) })

	if len(scheduler.tasks) != 1 || scheduler.tasks[0].Point != nil || scheduler.tasks[0].Label != "latitude" {
		t.Fatalf("expected address task, got %#v", scheduler.tasks)
	}
}

func TestTransformerReportsSynchronousErrors(t *testing.T) {
	cases := map[string]string{
		"$map()\n": `<div style="color: red;">Error: map directive needs an address or latitude and longitude</div>`,
		"$map(latitude=100, longitude=2)\n": `<div style="color: red;">Error: invalid map coordinates: latitude: must be between -90 and 90</div>`,
		"$map(latitude=1, longitude=east)\n": `<div style="color: red;">Error: invalid map coordinates: longitude: must be a floating point number</div>`,
	}
	for source, want := range cases {
		scheduler := &recordingScheduler{}
		out, _ := convert(t, source, func(pc parser.Context) { WithScheduler(pc, scheduler) })
		if !strings.Contains(out, want) {
			t.Fatalf("source %q: expected %s, got %s", source, want, out)
		}
		if len(scheduler.tasks) != 0 {
			t.Fatalf("source %q: expected no task, got %#v", source, scheduler.tasks)
		}
	}
}

func TestTransformerIssuesUniqueIdentifiers(t *testing.T) {
	scheduler := &recordingScheduler{}
	out, _ := convert(t, "$map(A)\n\n$map(B)\n\n$map(A)\n", func(pc parser.Context) {
		WithScheduler(pc, scheduler)
		WithContainerIDs(pc, identity.NewContainerIDs("doc"))
	})

	matches := placeholderPattern.FindAllStringSubmatch(out, -1)
	if len(matches) != 3 {
		t.Fatalf("expected three placeholders, got %d in %s", len(matches), out)
	}
	seen := map[string]bool{}
	for i, match := range matches {
		if seen[match[1]] {
			t.Fatalf("duplicate container id %s", match[1])
		}
		seen[match[1]] = true
		if scheduler.tasks[i].ContainerID != match[1] {
			t.Fatalf("expected tasks in document order, got %s at %d", scheduler.tasks[i].ContainerID, i)
		}
	}
}

func TestTransformerLeavesOtherDirectives(t *testing.T) {
	scheduler := &recordingScheduler{}
	out, _ := convert(t, "$lsx(/pages)\n", func(pc parser.Context) { WithScheduler(pc, scheduler) })

	if !strings.Contains(out, "<p>$lsx(/pages)</p>") {
		t.Fatalf("expected unhandled directive to be echoed, got %s", out)
	}
	if len(scheduler.tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(scheduler.tasks))
	}
}

func TestTransformerWithoutSchedulerOnlyRecordsTasks(t *testing.T) {
	_, pc := convert(t, "$map(Kyoto)\n", nil)
	if tasks := TasksFrom(pc); len(tasks) != 1 || tasks[0].Label != "Kyoto" {
		t.Fatalf("expected recorded task, got %#v", tasks)
	}
}

func TestErrorMarkupSanitisesMessage(t *testing.T) {
	got := ErrorMarkup(`<script>alert(1)</script>bad & worse`)
	if strings.Contains(got, "<script>") {
		t.Fatalf("expected script tag to be stripped, got %s", got)
	}
	if !strings.HasPrefix(got, `<div style="color: red;">Error: `) || !strings.Contains(got, "bad &amp; worse") {
		t.Fatalf("unexpected markup %s", got)
	}
}
