package fsops

// FakeDeleter implements Deleter for testing
// Records all delete calls without performing actual deletions.
// Errs maps a path to the error its deletion should fail with,
// which lets tests inject per-file failures.
type FakeDeleter struct {
	Calls []string
	Errs  map[string]error
}

func (f *FakeDeleter) Remove(path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	if f.Errs != nil {
		if err, ok := f.Errs[path]; ok {
			return err
		}
	}
	return nil
}
