// pkg/artifacts/templates.go

package artifacts

// Artifact templates. Renderers are pure: snapshot in, bytes out; nothing
// here reads from disk.

const envFileTemplate = `# Generated by ztpctl — do not edit while the pod is running.
# Regenerate with: ztpctl setup
CV_ADDR={{.CVAddr}}
ENROLLMENT_TOKEN={{.EnrollmentToken}}
CV_PROXY={{.CVProxy}}
EOS_IMAGE_URL={{.EOSImageURL}}
NTP_SERVER={{.NTPServer}}
ZTP_DOMAIN={{.Domain}}
ZTP_IPV4={{.IPv4}}
ZTP_IPV6={{.IPv6}}
ZTP_NETWORK={{.Network}}
HTTP_ONLY={{.HTTPOnly}}
HTTPS_PORT={{.HTTPSPort}}
TZ={{.Timezone}}
DNS1={{.DNS1}}
DNS2={{.DNS2}}
SESSION_TIMEOUT={{.SessionTimeout}}
SESSION_SECRET={{.SessionSecret}}
ZTP_ADMIN_PASSWORD_HASH={{.AdminPasswordHash}}
`

// DefaultBootstrap is the skeleton served to switches when no existing
// bootstrap.py survives from a previous install. The assignment block is
// the contract InjectBootstrap rewrites; the rest is a placeholder the
// operator replaces with the real provisioning payload.
const DefaultBootstrap = `#!/usr/bin/env python
# ZTP bootstrap payload. Served by the ztpbootstrap pod; the assignment
# block below is regenerated by ztpctl on every setup run.

CV_ADDR = ""
ENROLLMENT_TOKEN = ""
CV_PROXY = ""
EOS_URL = ""
NTP_SERVER = ""

# --- provisioning logic below this line is operator-owned ---
`

const nginxConfTemplate = `# Generated by ztpctl
{{- if .HTTPOnly}}
# HTTP-ONLY MODE: SSL is disabled for this deployment.
{{- end}}
server {
{{- if .HTTPOnly}}
    listen 80;
    listen [::]:80;
{{- else}}
    listen {{.HTTPSPort}} ssl;
    listen [::]:{{.HTTPSPort}} ssl;
    ssl_certificate     /etc/nginx/certs/ztpbootstrap.crt;
    ssl_certificate_key /etc/nginx/certs/ztpbootstrap.key;
{{- end}}
    server_name {{.Domain}};

    access_log /var/log/nginx/ztpbootstrap_access.log;
    error_log  /var/log/nginx/ztpbootstrap_error.log;

    root /opt/ztpbootstrap;
    index bootstrap.py;

    location / {
        default_type text/x-python;
        try_files $uri /bootstrap.py;
    }
{{- if .WebuiEnabled}}

    location /admin/ {
        proxy_pass http://127.0.0.1:{{.WebuiPort}}/;
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-Proto $scheme;
    }
{{- end}}
}
`

const podUnitTemplate = `[Unit]
Description=ZTP bootstrap pod

[Pod]
PodName={{.PodName}}
{{- if .Network}}
Network={{.Network}}
{{- end}}
{{- if .IPv4}}
IP={{.IPv4}}
{{- end}}
{{- if .IPv6}}
IP6={{.IPv6}}
{{- end}}
{{- if .DNS1}}
DNS={{.DNS1}}
{{- end}}
{{- if .DNS2}}
DNS={{.DNS2}}
{{- end}}
{{- if .HTTPOnly}}
PublishPort=80:80
{{- else}}
PublishPort={{.HTTPSPort}}:{{.HTTPSPort}}
{{- end}}

[Install]
WantedBy=multi-user.target default.target
`

const nginxContainerTemplate = `[Unit]
Description=ZTP bootstrap file server

[Container]
ContainerName={{.NginxContainerName}}
Image={{.NginxImage}}
Pod={{.PodUnitFile}}
Volume={{.ConfigDir}}:/opt/ztpbootstrap:ro,Z
Volume={{.ConfigDir}}/nginx.conf:/etc/nginx/conf.d/ztpbootstrap.conf:ro,Z
Environment=TZ={{.Timezone}}

[Service]
Restart=on-failure

[Install]
WantedBy=multi-user.target default.target
`

const webuiContainerTemplate = `[Unit]
Description=ZTP bootstrap dashboard

[Container]
ContainerName={{.WebuiContainerName}}
Image={{.WebuiImage}}
Pod={{.PodUnitFile}}
Volume={{.ConfigDir}}:{{.ConfigDir}}:rw,Z
Environment=ZTP_CONFIG_DIR={{.ConfigDir}}
Environment=HTTPS_ENABLED={{.HTTPSEnabled}}
Environment=TZ={{.Timezone}}

[Service]
Restart=on-failure

[Install]
WantedBy=multi-user.target default.target
`
