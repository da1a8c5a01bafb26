// Package api implements the client side of the mihomo external controller:
// request/response calls over HTTP and long-lived JSON frame streams over
// websockets. DataSource is the narrow contract the rest of the dashboard
// depends on.
package api
