package lfcdkedge

import (
	"github.com/advdv/lfcdk/lfcdkconfig"
)

// Scheme returns "https" when TLS terminates in front of the application and
// "http" otherwise.
func Scheme(tls bool) string {
	if tls {
		return "https"
	}
	return "http"
}

// URL derives the externally visible application URL. With a domain it is
// scheme://hostLabel.parentDomain, otherwise scheme://providerHost where
// providerHost is the load balancer or distribution generated hostname.
func URL(scheme string, domain *lfcdkconfig.DomainSettings, providerHost string) string {
	if domain != nil {
		return scheme + "://" + domain.FQDN()
	}
	return scheme + "://" + providerHost
}
