package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/vango-dev/rstate/pkg/document"
	"github.com/vango-dev/rstate/pkg/reactive"
	"github.com/vango-dev/rstate/pkg/selectexpr"
)

type runOptions struct {
	script  string
	selects []string
	sync    bool
	diff    bool
	format  string
}

func runCmd(g *globalFlags) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <state>",
		Short: "Apply a script to a state document and print deliveries",
		Long: `Load a state document, bind observers to it and apply a mutation
script. Every delivery is printed as it happens.

Without --select a single coarse observer is bound. Each --select binds
a selector observer that fires only when the expression's value changes.
The root is available as $ in expressions.

Examples:
  rstate run state.yaml --script steps.yaml
  rstate run state.yaml -s steps.yaml --select obj.age --select 'len(todos)'
  rstate run state.yaml -s steps.yaml --diff --sync`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(g, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runScript(cmd.OutOrStdout(), e, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.script, "script", "s", "", "Mutation script (YAML or JSON)")
	cmd.Flags().StringArrayVar(&opts.selects, "select", nil, "Selector expression to observe (repeatable)")
	cmd.Flags().BoolVar(&opts.sync, "sync", false, "Deliver synchronously instead of once per tick")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "Print a line diff of the state on each coarse delivery")
	cmd.Flags().StringVarP(&opts.format, "output", "o", "yaml", "Final state format: yaml or json")

	return cmd
}

func runScript(w io.Writer, e *env, path string, opts *runOptions) error {
	format := document.Format(opts.format)
	if format != document.FormatYAML && format != document.FormatJSON {
		return fmt.Errorf("unknown output format %q", opts.format)
	}

	var script *document.Script
	if opts.script != "" {
		s, err := document.LoadScript(opts.script)
		if err != nil {
			return err
		}
		script = s
	}

	sels := make([]*selectexpr.Selector, len(opts.selects))
	for i, src := range opts.selects {
		sel, err := selectexpr.Compile(src)
		if err != nil {
			return err
		}
		sels[i] = sel
	}

	sched, err := e.newScheduler()
	if err != nil {
		return err
	}
	root, err := document.LoadRoot(path, e.rootOptions(sched)...)
	if err != nil {
		return err
	}
	defer e.track(root)()

	success(w, "Loaded %s (root %d)", path, root.ID())

	var bindings []*reactive.Binding
	defer func() {
		for _, b := range bindings {
			b.Teardown()
		}
	}()

	if len(sels) == 0 {
		obs := &coarseObserver{w: w, root: root, diff: opts.diff}
		if opts.diff {
			if obs.prev, err = stateText(root); err != nil {
				return err
			}
		}
		bindings = append(bindings, reactive.BindObserver(root, obs.deliver, reactive.WithSync(opts.sync)))
	}
	for i, sel := range sels {
		v, err := sel.Eval(root)
		if err != nil {
			return err
		}
		info(w, "%s %s = %v", gray(fmt.Sprintf("[%d]", i)), sel, v)

		obs := &selectorObserver{w: w, root: root, index: i, sel: sel}
		bindings = append(bindings, reactive.BindObserver(root, obs.deliver, sel.Option(), reactive.WithSync(opts.sync)))
	}

	if script != nil {
		err := script.Apply(root, func(i int, st document.Step) {
			e.logger.Debug("step applied", "step", i, "op", string(st.Op), "path", st.Path)
			if st.Op == document.OpTick {
				info(w, "%s", gray("-- tick --"))
			}
		})
		if err != nil {
			return err
		}
	}
	if n := sched.Flush(); n > 0 {
		info(w, "%s", gray("-- tick --"))
	}

	out, err := document.Encode(root.Node(), format)
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, string(out))
	return nil
}

type coarseObserver struct {
	w     io.Writer
	root  *reactive.Root
	diff  bool
	prev  string
	count int
}

func (o *coarseObserver) deliver() {
	o.count++
	success(o.w, "change #%d", o.count)
	if !o.diff {
		return
	}
	next, err := stateText(o.root)
	if err != nil {
		warn(o.w, "cannot render state: %v", err)
		return
	}
	fmt.Fprint(o.w, lineDiff(o.prev, next))
	o.prev = next
}

type selectorObserver struct {
	w     io.Writer
	root  *reactive.Root
	index int
	sel   *selectexpr.Selector
}

func (o *selectorObserver) deliver() {
	// Rerender carries no payload, so read the value again.
	v, err := o.sel.Eval(o.root)
	if err != nil {
		warn(o.w, "%v", err)
		return
	}
	success(o.w, "%s %s = %v", cyan(fmt.Sprintf("[%d]", o.index)), o.sel, v)
}

func stateText(root *reactive.Root) (string, error) {
	out, err := document.Encode(root.Node(), document.FormatYAML)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// lineDiff renders the changed lines between a and b, prefixed with - and +.
func lineDiff(a, b string) string {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var mark string
		var paint func(a ...any) string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			mark, paint = "-", red
		case diffmatchpatch.DiffInsert:
			mark, paint = "+", green
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString("    ")
			sb.WriteString(paint(mark + " " + strings.TrimSuffix(line, "\n")))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
