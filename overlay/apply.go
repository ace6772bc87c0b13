package overlay

import (
	"context"
	"fmt"
	"sort"

	descriptors "github.com/goliatone/go-descriptors"
	"github.com/goliatone/go-descriptors/layering"
	"github.com/goliatone/go-descriptors/pkg/activity"
	"github.com/goliatone/go-descriptors/rules"
)

// SkipReason explains why a document entry was not applied.
type SkipReason string

const (
	SkipNoTarget       SkipReason = "no_target"
	SkipConditionFalse SkipReason = "condition_false"
)

// Skipped names a document entry that was not applied.
type Skipped struct {
	Property string
	Reason   SkipReason
}

// Report summarises an Apply call. Applied and Skipped are sorted by
// property name.
type Report struct {
	Applied []string
	Skipped []Skipped
}

// Applier applies overlay documents to dynamic descriptors.
type Applier struct {
	cfg applierConfig
}

// NewApplier constructs an Applier. Without WithEvaluator, when expressions
// run on the expr engine.
func NewApplier(opts ...ApplierOption) *Applier {
	cfg := applierConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.evaluator == nil {
		cfg.evaluator = rules.Default()
	}
	if cfg.logger == nil {
		cfg.logger = noopApplyLogger{}
	}
	cfg.emitter = activity.NewEmitter(cfg.activityHooks, activity.Config{
		Enabled: len(cfg.activityHooks) > 0,
		Channel: cfg.activityChannel,
	})
	return &Applier{cfg: cfg}
}

// Apply applies doc to targets, keyed by property name. Entries without a
// target, or whose when expression is false, are skipped. When any entry
// fails to resolve no target is modified.
func (a *Applier) Apply(ctx context.Context, doc Document, targets map[string]*descriptors.Dynamic, component any) (Report, error) {
	return a.apply(ctx, doc, nil, targets, component)
}

// ApplyMerged applies a merged stack. Each layer's when expression is
// evaluated with that layer's scope name, and only gates the fields the same
// layer sets. The surviving layers are then merged strongest first. Events
// carry the strongest surviving scope for each property.
func (a *Applier) ApplyMerged(ctx context.Context, merged *Merged, targets map[string]*descriptors.Dynamic, component any) (Report, error) {
	if merged == nil {
		return Report{}, fmt.Errorf("overlay: merged document must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	docs, gated, err := a.gateLayers(ctx, merged.layers, targets, component)
	if err != nil {
		return Report{}, err
	}
	doc, provenance := layering.MergeWithProvenance(docs...)
	surviving := &Merged{Document: doc, layers: merged.layers, provenance: provenance}

	report, err := a.apply(ctx, doc, surviving, targets, component)
	if err != nil {
		return Report{}, err
	}
	if len(gated) > 0 {
		report.Skipped = append(report.Skipped, gated...)
		sort.SliceStable(report.Skipped, func(i, j int) bool {
			return report.Skipped[i].Property < report.Skipped[j].Property
		})
	}
	return report, nil
}

// gateLayers drops every layer entry whose when expression is false and
// strips when from the rest. A property is reported as skipped only when no
// layer entry for it survives.
func (a *Applier) gateLayers(ctx context.Context, layers []Layer, targets map[string]*descriptors.Dynamic, component any) ([]Document, []Skipped, error) {
	docs := make([]Document, len(layers))
	survived := map[string]bool{}
	gatedBy := map[string]string{}

	for i, layer := range layers {
		doc := Document{Version: layer.Document.Version}
		if len(layer.Document.Properties) > 0 {
			doc.Properties = make(map[string]PropertyOverlay, len(layer.Document.Properties))
		}
		for _, name := range layer.Document.PropertyNames() {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			entry := layer.Document.Properties[name]
			if entry.When != nil && targets[name] != nil {
				ok, err := a.condition(component, name, layer.Scope.Name, *entry.When)
				if err != nil {
					return nil, nil, fmt.Errorf("overlay: scope %q property %q: %w", layer.Scope.Name, name, err)
				}
				if !ok {
					if _, seen := gatedBy[name]; !seen {
						gatedBy[name] = layer.Scope.Name
					}
					continue
				}
			}
			entry.When = nil
			doc.Properties[name] = entry
			survived[name] = true
		}
		docs[i] = doc
	}

	names := make([]string, 0, len(gatedBy))
	for name := range gatedBy {
		if !survived[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	skipped := make([]Skipped, 0, len(names))
	for _, name := range names {
		skipped = append(skipped, Skipped{Property: name, Reason: SkipConditionFalse})
		a.cfg.logger.LogApply(ApplyLogEvent{Property: name, Scope: gatedBy[name], Skipped: SkipConditionFalse})
	}
	return docs, skipped, nil
}

func (a *Applier) condition(component any, property, scope, expression string) (bool, error) {
	return rules.EvaluateBool(a.cfg.evaluator, rules.RuleContext{
		Component: component,
		Property:  property,
		Scope:     scope,
	}, expression, a.cfg.ruleLogger)
}

type plannedEntry struct {
	property  string
	target    *descriptors.Dynamic
	entry     PropertyOverlay
	converter descriptors.Converter
	editors   map[descriptors.EditorKind]descriptors.Editor
	layer     Layer
	hasLayer  bool
}

func (a *Applier) apply(ctx context.Context, doc Document, merged *Merged, targets map[string]*descriptors.Dynamic, component any) (Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	report := Report{}
	plan := make([]plannedEntry, 0, len(doc.Properties))

	for _, name := range doc.PropertyNames() {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		entry := doc.Properties[name]
		target := targets[name]
		if target == nil {
			report.Skipped = append(report.Skipped, Skipped{Property: name, Reason: SkipNoTarget})
			a.cfg.logger.LogApply(ApplyLogEvent{Property: name, Skipped: SkipNoTarget})
			continue
		}

		planned := plannedEntry{property: name, target: target, entry: entry}
		planned.layer, planned.hasLayer = merged.strongest(name)

		if entry.When != nil {
			ok, err := a.condition(component, name, planned.layer.Scope.Name, *entry.When)
			if err != nil {
				return Report{}, fmt.Errorf("overlay: property %q: %w", name, err)
			}
			if !ok {
				report.Skipped = append(report.Skipped, Skipped{Property: name, Reason: SkipConditionFalse})
				a.cfg.logger.LogApply(ApplyLogEvent{Property: name, Scope: planned.layer.Scope.Name, Skipped: SkipConditionFalse})
				continue
			}
		}

		if entry.Converter != nil {
			converter, err := a.cfg.registry.Converter(*entry.Converter)
			if err != nil {
				return Report{}, fmt.Errorf("overlay: property %q: %w", name, err)
			}
			planned.converter = converter
		}
		if len(entry.Editors) > 0 {
			planned.editors = make(map[descriptors.EditorKind]descriptors.Editor, len(entry.Editors))
			for kind, editorName := range entry.Editors {
				if editorName == "" {
					planned.editors[descriptors.EditorKind(kind)] = nil
					continue
				}
				editor, err := a.cfg.registry.Editor(editorName)
				if err != nil {
					return Report{}, fmt.Errorf("overlay: property %q editor %q: %w", name, kind, err)
				}
				planned.editors[descriptors.EditorKind(kind)] = editor
			}
		}
		plan = append(plan, planned)
	}

	for _, planned := range plan {
		fields := planned.apply()
		report.Applied = append(report.Applied, planned.property)
		a.record(ctx, planned, fields)
	}
	return report, nil
}

func (p plannedEntry) apply() []string {
	var fields []string
	entry := p.entry
	if entry.ReadOnly != nil {
		p.target.SetReadOnly(*entry.ReadOnly)
		fields = append(fields, descriptors.FieldReadOnly.String())
	}
	if entry.Category != nil {
		p.target.SetCategory(*entry.Category)
		fields = append(fields, descriptors.FieldCategory.String())
	}
	if entry.Converter != nil {
		p.target.SetConverter(p.converter)
		fields = append(fields, descriptors.FieldConverter.String())
	}
	if entry.Description != nil {
		p.target.SetDescription(*entry.Description)
		fields = append(fields, descriptors.FieldDescription.String())
	}
	if entry.DisplayName != nil {
		p.target.SetDisplayName(*entry.DisplayName)
		fields = append(fields, descriptors.FieldDisplayName.String())
	}
	if len(p.editors) > 0 {
		kinds := make([]descriptors.EditorKind, 0, len(p.editors))
		for kind := range p.editors {
			kinds = append(kinds, kind)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, kind := range kinds {
			p.target.SetEditor(kind, p.editors[kind])
		}
		fields = append(fields, descriptors.FieldEditor.String())
	}
	return fields
}

func (a *Applier) record(ctx context.Context, planned plannedEntry, fields []string) {
	event := ApplyLogEvent{
		Property: planned.property,
		Fields:   fields,
		Scope:    planned.layer.Scope.Name,
	}
	if a.cfg.emitter.Enabled() {
		input := activity.DescriptorEventInput{
			ActorID:  a.cfg.actorID,
			TenantID: a.cfg.tenantID,
			Property: planned.property,
			Metadata: map[string]any{"fields": fields},
		}
		if componentType := planned.target.ComponentType(); componentType != nil {
			input.ComponentType = componentType.String()
		}
		if planned.hasLayer {
			input.Scope = activity.ScopeContext{
				Name:       planned.layer.Scope.Name,
				Label:      planned.layer.Scope.Label,
				Priority:   planned.layer.Scope.Priority,
				Metadata:   planned.layer.Scope.Metadata,
				SnapshotID: planned.layer.SnapshotID,
			}
		}
		event.Err = a.cfg.emitter.Emit(ctx, activity.BuildOverlayAppliedEvent(input))
	}
	a.cfg.logger.LogApply(event)
}
