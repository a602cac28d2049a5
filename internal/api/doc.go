// Package api serves the editor over HTTP.
//
// Each project is opened once into a [Workspace] holding its transactional
// store. Editor operations run against an editing session whose selection is
// loaded from and saved back to a session.Store around every request. Every
// commit is saved to storage and, when Redis is configured, announced on
// the channel "studio:commits:<project>".
//
// Routes:
//
//	GET    /healthz
//	GET    /projects
//	GET    /projects/{project}/build
//	PUT    /projects/{project}/build
//	GET    /projects/{project}/tree.svg
//	POST   /projects/{project}/sessions
//	GET    /projects/{project}/assets
//	POST   /projects/{project}/assets
//	GET    /projects/{project}/assets/{name}
//	DELETE /projects/{project}/assets/{name}
//	GET    /sessions/{session}
//	DELETE /sessions/{session}
//	POST   /sessions/{session}/{insert,paste,duplicate,reparent,delete,select,escape,undo,redo}
//
// Errors are JSON bodies of the form {"error": "...", "code": "..."}.
package api
