package costs

// Montage returns the cost table measured for the Montage astronomy
// workflow, used when no configuration overrides it.
func Montage() *Table {
	return NewTable(map[string]Profile{
		"create_dir_montage": {},
		"stage_in":           {},
		"stage_out":          {},
		"mProject":           {ExecTime: 599.75, CommBefore: 18, CommAfter: 3},
		"mDiffFit":           {ExecTime: 46.23, CommBefore: 46, CommAfter: 2},
		"mConcatFit":         {ExecTime: 10.0, CommBefore: 30, CommAfter: 2},
		"mBgModel":           {ExecTime: 12.5, CommBefore: 46, CommAfter: 2},
		"mBackground":        {ExecTime: 38.0, CommBefore: 13, CommAfter: 2},
		"mImgtbl":            {ExecTime: 17.5, CommBefore: 31, CommAfter: 2},
		"mAdd":               {ExecTime: 25.0, CommBefore: 173, CommAfter: 7},
		"mViewer":            {ExecTime: 16.66, CommBefore: 5, CommAfter: 2},
	})
}
