package metric

import (
	"slices"
	"strings"

	"github.com/yndnr/vitals/pkg/cmap"
)

// child is implemented by the per-label-tuple accumulators.
type child interface {
	labels() []string
	series() Series
}

// vec holds the children of one labelled instrument.
type vec[T child] struct {
	desc     *Desc
	children *cmap.Map[string, T]
	newChild func(labelValues []string) T
}

func newVec[T child](desc *Desc, newChild func([]string) T) *vec[T] {
	v := &vec[T]{
		desc:     desc,
		children: cmap.New[string, T](),
		newChild: newChild,
	}
	// Unlabelled instruments expose their zero value from the start.
	if len(desc.LabelNames) == 0 {
		v.children.Set("", newChild(nil))
	}
	return v
}

// get returns the child for the label values, creating it on first use.
func (v *vec[T]) get(values []string) (T, error) {
	if err := checkLabelValues(v.desc, values); err != nil {
		var zero T
		return zero, err
	}
	key := labelKey(values)
	if c, ok := v.children.Get(key); ok {
		return c, nil
	}
	c, _ := v.children.GetOrSet(key, v.newChild(slices.Clone(values)))
	return c, nil
}

// must is get for call sites whose label arity is fixed at compile time.
func (v *vec[T]) must(values []string) T {
	c, err := v.get(values)
	if err != nil {
		panic(err)
	}
	return c
}

func (v *vec[T]) family() Family {
	f := Family{
		Name:       v.desc.Name,
		Help:       v.desc.Help,
		Kind:       v.desc.Kind,
		LabelNames: v.desc.LabelNames,
	}
	for _, c := range v.children.All() {
		f.Series = append(f.Series, c.series())
	}
	slices.SortFunc(f.Series, func(a, b Series) int {
		return slices.Compare(a.LabelValues, b.LabelValues)
	})
	return f
}

// Len returns the number of live label tuples.
func (v *vec[T]) Len() int {
	return v.children.Count()
}

func (v *vec[T]) String() string {
	return v.desc.Kind.String() + " " + v.desc.Name + "{" + strings.Join(v.desc.LabelNames, ",") + "}"
}
