package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/droid-a11y/internal/model"
	"github.com/mj1618/droid-a11y/internal/output"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the target window's accessibility tree",
	Long: `Dump the accessibility tree of the target app's window as nested
elements, or as a flat list with path breadcrumbs (--flat).

With --diff the flat dump is compared with the previous --diff run for the
same package and only the differences are printed.`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().Bool("flat", false, "Flat list with path breadcrumbs")
	dumpCmd.Flags().String("text", "", "Keep elements whose text contains this (case-insensitive)")
	dumpCmd.Flags().String("roles", "", "Comma-separated roles to keep (e.g. \"txt,btn,list\")")
	dumpCmd.Flags().Bool("prune", false, "Drop anonymous containers")
	dumpCmd.Flags().String("bbox", "", "Only include elements intersecting this box (x,y,w,h)")
	dumpCmd.Flags().Int("max-nodes", 0, "Stop copying after this many nodes (0 = unlimited)")
	dumpCmd.Flags().Bool("diff", false, "Print changes since the previous --diff dump")
	dumpCmd.Flags().String("snapshot-dir", "", "Where --diff keeps snapshots (default user cache dir)")
}

type diffOutput struct {
	Package string         `yaml:"pkg,omitempty"   json:"pkg,omitempty"`
	TS      int64          `yaml:"ts"              json:"ts"`
	First   bool           `yaml:"first,omitempty" json:"first,omitempty"`
	Diff    model.TreeDiff `yaml:"diff"            json:"diff"`
}

func runDump(cmd *cobra.Command, args []string) error {
	flat, _ := cmd.Flags().GetBool("flat")
	text, _ := cmd.Flags().GetString("text")
	rolesStr, _ := cmd.Flags().GetString("roles")
	prune, _ := cmd.Flags().GetBool("prune")
	maxNodes, _ := cmd.Flags().GetInt("max-nodes")
	diff, _ := cmd.Flags().GetBool("diff")
	snapDir, _ := cmd.Flags().GetString("snapshot-dir")
	bboxStr, _ := cmd.Flags().GetString("bbox")
	roles := splitList(rolesStr)
	bbox, err := model.ParseBBox(bboxStr)
	if err != nil {
		return report("dump", nil, err)
	}

	return withSession(func(s *session) error {
		snap, err := s.ctl.Dump(cmd.Context(), maxNodes)
		if err != nil {
			return report("dump", nil, err)
		}
		ts := time.Now().Unix()

		if flat || diff {
			elements := model.FilterFlat(model.FlattenElements(snap.Elements), roles, text, bbox)
			if prune {
				elements = model.PruneEmptyGroupsFlat(elements)
			}
			if diff {
				d, first, err := diffAgainstStored(snapDir, snap.Package, elements)
				if err != nil {
					return report("dump", nil, err)
				}
				return report("dump", diffOutput{Package: snap.Package, TS: ts, First: first, Diff: d}, nil)
			}
			return report("dump", output.DumpFlatResult{
				Package:   snap.Package,
				TS:        ts,
				Truncated: snap.Truncated,
				Elements:  elements,
			}, nil)
		}

		elements := model.FilterByText(snap.Elements, text)
		elements = model.FilterElements(elements, roles, bbox)
		if prune {
			elements = model.PruneEmptyGroups(elements)
		}
		return report("dump", output.DumpResult{
			Package:   snap.Package,
			TS:        ts,
			Truncated: snap.Truncated,
			Elements:  elements,
		}, nil)
	})
}

// diffAgainstStored diffs elements with the stored snapshot for pkg and
// stores elements in its place. first is set when nothing was stored yet,
// in which case every element counts as added.
func diffAgainstStored(dir, pkg string, elements []model.FlatElement) (d model.TreeDiff, first bool, err error) {
	store := model.SnapshotStore{Dir: dir}
	if dir == "" {
		if store, err = model.DefaultSnapshotStore(); err != nil {
			return d, false, err
		}
	}
	prev, ok, err := store.Load(pkg)
	if err != nil {
		return d, false, err
	}
	d = model.DiffElementsByHash(prev, elements)
	if err := store.Save(pkg, elements); err != nil {
		return d, false, err
	}
	return d, !ok, nil
}
