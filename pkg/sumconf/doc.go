// Package sumconf gathers an application's configuration from files
// scattered across a directory hierarchy.
//
// Starting from a directory (the working directory by default), sumconf
// looks for candidate files such as .myapprc, .myapprc.yaml,
// myapp.config.json and the "myapp" key of package.json, moving up one
// parent at a time until it reaches a stop directory, a directory holding
// a stop peer (.git or .hg) or the filesystem root. The per-user
// configuration directory is searched last. Files nearer the start
// directory win:
//
//	res, err := sumconf.Gather(ctx, "myapp", sumconf.Options{})
//	if err != nil {
//		return err
//	}
//	port := res.Value["port"]
//	file, _ := res.Source("port")
//
// A file whose top level sets root: true discards everything farther away.
//
// Directory listings are cached for the life of the process; call
// ClearCaches after the filesystem changes.
package sumconf
