// Package pages renders the standalone error pages with gomponents.
package pages

import (
	"net/http"

	"blogicum/constants"

	g "github.com/maragudk/gomponents"
	. "github.com/maragudk/gomponents/html"
)

type LayoutProps struct {
	Title       string
	CurrentUser string
}

func NavbarComponent(props LayoutProps) g.Node {
	return Nav(Class("nav"),
		Div(Class("nav-left"),
			Div(Class("brand"), A(Href("/"), g.Text(constants.APP_NAME))),
		),
		Div(Class("nav-links nav-right"),
			g.If(props.CurrentUser == "",
				Div(
					A(Href("/auth/login"), g.Text("Log in")),
					A(Href("/auth/registration"), g.Text("Sign up")),
				),
			),
			g.If(props.CurrentUser != "",
				Div(Class("row"),
					Div(Class("col"), A(Href("/posts/create"), g.Text("New post"))),
					Div(Class("col"), A(Href("/profile/"+props.CurrentUser), g.Text(props.CurrentUser))),
				)),
		),
	)
}

func FooterComponent() g.Node {
	return Footer(Class("footer"),
		P(g.Raw("<small>&copy; "+constants.APP_NAME+"</small>")),
	)
}

func Layout(props LayoutProps, children ...g.Node) g.Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				Link(Rel("stylesheet"), Href("https://unpkg.com/chota@0.9.2/dist/chota.min.css")),
				TitleEl(g.Textf("%s | %s", props.Title, constants.APP_NAME)),
			),
			Body(
				Div(Class("container"), Style("margin-top: 1.5em;"),
					NavbarComponent(props),
					Main(
						g.Group(children),
					),
				),
				FooterComponent(),
			),
		),
	)
}

func errorPage(props LayoutProps, heading, message string) g.Node {
	return Layout(props,
		Div(Class("card text-center"),
			H1(g.Text(heading)),
			P(g.Text(message)),
			P(A(Href("/"), g.Text("Back to the home page"))),
		),
	)
}

func NotFound(props LayoutProps) g.Node {
	props.Title = "Page not found"
	return errorPage(props, "404", "The page you were looking for does not exist or is not published yet.")
}

func ServerError(props LayoutProps) g.Node {
	props.Title = "Server error"
	return errorPage(props, "500", "Something went wrong on our side. Please try again later.")
}

// Write renders node with the given status code.
func Write(w http.ResponseWriter, status int, node g.Node) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return node.Render(w)
}
